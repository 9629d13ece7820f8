package main

import "github.com/jmehdipour/segment-reports/cmd"

func main() {
	cmd.Execute()
}
