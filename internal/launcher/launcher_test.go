package launcher

import (
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func closedAddr(t *testing.T) string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	_ = l.Close()
	return addr
}

func TestLauncher(t *testing.T) {
	Convey("Given a running preview server", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()
		addr := strings.TrimPrefix(srv.URL, "http://")

		dir := t.TempDir()
		var opened []string
		l := &Launcher{Enabled: true, Addr: addr, Dir: dir, BaseURL: srv.URL + "/", ProbeTimeout: 500 * time.Millisecond,
			Open: func(u string) error { opened = append(opened, u); return nil }}

		Convey("Then the report is opened through the server", func() {
			got := l.OpenFile(filepath.Join(dir, "customers_by_cluster.html"))
			So(got, ShouldEqual, srv.URL+"/customers_by_cluster.html")
			So(opened, ShouldResemble, []string{got})
		})

		Convey("And a report in a subdirectory keeps its relative path", func() {
			got := l.OpenFile(filepath.Join(dir, "sakila out", "sakila_customers_by_film.html"))
			So(got, ShouldEqual, srv.URL+"/sakila%20out/sakila_customers_by_film.html")
		})

		Convey("And a report written outside the served directory opens as a file", func() {
			got := l.OpenFile(filepath.Join(t.TempDir(), "customers_by_cluster.html"))
			So(got, ShouldStartWith, "file://")
			So(got, ShouldEndWith, "/customers_by_cluster.html")
		})
	})

	Convey("Given no preview server", t, func() {
		var opened []string
		l := &Launcher{Enabled: true, Addr: closedAddr(t), BaseURL: "http://127.0.0.1:8000/", ProbeTimeout: 200 * time.Millisecond,
			Open: func(u string) error { opened = append(opened, u); return nil }}

		Convey("Then the absolute file URL is opened", func() {
			path := filepath.Join(t.TempDir(), "sakila_customers_by_category.html")
			got := l.OpenFile(path)
			So(got, ShouldStartWith, "file://")
			So(got, ShouldEndWith, "/sakila_customers_by_category.html")
			So(len(opened), ShouldEqual, 1)
		})
	})

	Convey("Given a browser that fails to start", t, func() {
		l := &Launcher{Enabled: true, Open: func(string) error { return errors.New("no display") }}

		Convey("Then opening does not panic and still reports the target", func() {
			So(l.OpenFile("report.html"), ShouldStartWith, "file://")
		})
	})

	Convey("Given the launcher is disabled", t, func() {
		called := false
		l := &Launcher{Open: func(string) error { called = true; return nil }}

		Convey("Then nothing is opened", func() {
			So(l.OpenFile("report.html"), ShouldEqual, "")
			So(called, ShouldBeFalse)
		})
	})
}

func TestProbe(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	if !Probe(strings.TrimPrefix(srv.URL, "http://"), time.Second) {
		t.Fatal("expected open port")
	}
	if Probe(closedAddr(t), 200*time.Millisecond) {
		t.Fatal("expected closed port")
	}
}
