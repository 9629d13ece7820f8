package cmd

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmehdipour/segment-reports/internal/config"
	"github.com/jmoiron/sqlx"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDemoCustomers(t *testing.T) {
	Convey("Given a seed", t, func() {
		a := demoCustomers(50, 42)
		b := demoCustomers(50, 42)

		Convey("Then the demo rows are reproducible", func() {
			So(a, ShouldResemble, b)
		})

		Convey("And every value stays in range", func() {
			for i, c := range a {
				So(c.ID, ShouldEqual, i+1)
				So(c.Age, ShouldBeBetweenOrEqual, 18, 70)
				So(c.AnnualIncome, ShouldBeBetweenOrEqual, 15, 140)
				So(c.SpendingScore, ShouldBeBetweenOrEqual, 1, 100)
			}
		})
	})
}

func TestSeedCustomers(t *testing.T) {
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer raw.Close()

	rows := demoCustomers(2, 1)
	mock.ExpectBegin()
	for _, c := range rows {
		mock.ExpectExec("INSERT INTO customer\\s").WithArgs(c.ID, c.FirstName, c.LastName, c.Gender, c.Age, c.Email).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO customer_spend_score").WithArgs(c.ID, c.AnnualIncome, c.SpendingScore).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	if err := seedCustomers(sqlx.NewDb(raw, "sqlmock"), rows); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestBuildSinksDisabled(t *testing.T) {
	s, closeAll, err := buildSinks(config.Config{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer closeAll()
	if s != nil {
		t.Fatalf("expected no sink, got %T", s)
	}
}

func TestCommandTree(t *testing.T) {
	want := map[string]bool{"sakila": false, "sales": false, "serve": false, "open": false, "migrate": false, "seed": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing command %q", name)
		}
	}
	if f := salesCmd.Flags().Lookup("plots"); f == nil || f.DefValue != "false" {
		t.Fatal("sales needs a --plots flag defaulting to false")
	}
}
