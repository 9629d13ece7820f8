package table_test

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmehdipour/segment-reports/internal/table"
	"github.com/jmoiron/sqlx"
	. "github.com/smartystreets/goconvey/convey"
)

func customers() *table.Table {
	t := table.New("CustomerID", "Name", "Email")
	_ = t.Append(int64(1), "Mary Smith", "mary@example.com")
	_ = t.Append(int64(2), "Patricia Johnson", nil)
	_ = t.Append(int64(3), "Linda Williams", "linda@example.com")
	_ = t.Append(int64(4), "Barbara Jones", "barbara@example.com")
	return t
}

func labels() *table.Table {
	t := table.New("CustomerId", "cluster")
	_ = t.Append(int64(3), 1)
	_ = t.Append(int64(1), 0)
	_ = t.Append(int64(2), 1)
	return t
}

func TestMerge(t *testing.T) {
	Convey("Given customers and cluster labels keyed by differently spelled columns", t, func() {
		merged, err := table.Merge(customers(), labels(), "CustomerID", "CustomerId", "cluster")
		So(err, ShouldBeNil)

		Convey("Then both key columns and the label are kept", func() {
			So(merged.Columns, ShouldResemble, []string{"CustomerID", "Name", "Email", "CustomerId", "cluster"})
		})

		Convey("And only matched customers survive, in left order", func() {
			ids, _ := merged.Column("CustomerID")
			So(ids, ShouldResemble, []any{int64(1), int64(2), int64(3)})
		})

		Convey("And every merged id equals the label table id on the same row", func() {
			for _, row := range merged.Rows {
				So(table.Format(row[0]), ShouldEqual, table.Format(row[3]))
			}
		})
	})

	Convey("Given a label table without the cluster column", t, func() {
		bad := table.New("CustomerId", "label")
		_ = bad.Append(int64(1), 0)

		_, err := table.Merge(customers(), bad, "CustomerID", "CustomerId", "cluster")

		Convey("Then the merge fails loudly", func() {
			So(errors.Is(err, table.ErrMissingColumn), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "cluster")
		})
	})

	Convey("Given a left table without the join column", t, func() {
		_, err := table.Merge(table.New("Name"), labels(), "CustomerID", "CustomerId", "cluster")

		Convey("Then the merge fails loudly", func() {
			So(errors.Is(err, table.ErrMissingColumn), ShouldBeTrue)
		})
	})

	Convey("Given keys that differ only in representation", t, func() {
		right := table.New("CustomerId", "cluster")
		_ = right.Append("4", 2)

		merged, err := table.Merge(customers(), right, "CustomerID", "CustomerId", "cluster")

		Convey("Then they still join", func() {
			So(err, ShouldBeNil)
			So(merged.Len(), ShouldEqual, 1)
		})
	})

	Convey("Given identical key names", t, func() {
		right := table.New("CustomerID", "Name")
		_ = right.Append(int64(1), "dup")

		merged, err := table.Merge(customers(), right, "CustomerID", "CustomerID", "Name")

		Convey("Then the key is not repeated and clashing names get a suffix", func() {
			So(err, ShouldBeNil)
			So(merged.Columns, ShouldResemble, []string{"CustomerID", "Name", "Email", "Name_y"})
		})
	})
}

func TestGroupAndSort(t *testing.T) {
	Convey("Given a merged table", t, func() {
		merged, err := table.Merge(customers(), labels(), "CustomerID", "CustomerId", "cluster")
		So(err, ShouldBeNil)

		Convey("When grouping by cluster", func() {
			groups, err := merged.GroupBy("cluster")
			So(err, ShouldBeNil)

			Convey("Then groups are key ordered and rows keep input order", func() {
				So(len(groups), ShouldEqual, 2)
				So(groups[0].Key, ShouldEqual, 0)
				So(groups[1].Key, ShouldEqual, 1)
				ids, _ := groups[1].Table.Column("CustomerID")
				So(ids, ShouldResemble, []any{int64(2), int64(3)})
			})
		})

		Convey("When sorting by cluster", func() {
			So(merged.SortStableBy("cluster"), ShouldBeNil)
			ids, _ := merged.Column("CustomerID")
			So(ids, ShouldResemble, []any{int64(1), int64(2), int64(3)})
		})

		Convey("When dropping the label", func() {
			out := merged.Drop("cluster")
			So(out.Columns, ShouldResemble, []string{"CustomerID", "Name", "Email", "CustomerId"})
			So(out.Len(), ShouldEqual, merged.Len())
		})

		Convey("When grouping by an unknown column", func() {
			_, err := merged.GroupBy("segment")
			So(errors.Is(err, table.ErrMissingColumn), ShouldBeTrue)
		})
	})

	Convey("Given an empty table", t, func() {
		groups, err := table.New("cluster").GroupBy("cluster")

		Convey("Then grouping yields no groups and no error", func() {
			So(err, ShouldBeNil)
			So(groups, ShouldBeEmpty)
		})
	})
}

func TestFormatAndLess(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{int64(42), "42"},
		{3.5, "3.5"},
		{true, "1"},
		{[]byte("x"), "x"},
		{day, "2024-03-01"},
		{day.Add(90 * time.Minute), "2024-03-01 01:30:00"},
	}
	for _, tc := range cases {
		if got := table.Format(tc.in); got != tc.want {
			t.Errorf("Format(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}

	if !table.Less(int64(2), int64(10)) {
		t.Error("expected numeric ordering for ints")
	}
	if !table.Less(nil, "a") || table.Less("a", nil) {
		t.Error("expected nil to sort first")
	}
	if !table.Less("Action", "Comedy") {
		t.Error("expected string ordering")
	}
}

func TestFromRows(t *testing.T) {
	Convey("Given a SELECT * result from the sales customer table", t, func() {
		raw, mock, err := sqlmock.New()
		So(err, ShouldBeNil)
		defer raw.Close()
		db := sqlx.NewDb(raw, "sqlmock")

		mock.ExpectQuery("SELECT \\* FROM customer").WillReturnRows(
			sqlmock.NewRows([]string{"CustomerID", "FirstName"}).
				AddRow([]byte("1"), []byte("Ana")).
				AddRow(int64(2), "Bo"),
		)

		rows, err := db.Queryx("SELECT * FROM customer")
		So(err, ShouldBeNil)
		defer rows.Close()

		tbl, err := table.FromRows(rows)

		Convey("Then columns and rows are materialized", func() {
			So(err, ShouldBeNil)
			So(tbl.Columns, ShouldResemble, []string{"CustomerID", "FirstName"})
			So(tbl.Len(), ShouldEqual, 2)
			So(tbl.Rows[0][1], ShouldEqual, "Ana")
			So(tbl.Rows[1][0], ShouldEqual, int64(2))
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})
	})
}

func TestRecordsRoundTrip(t *testing.T) {
	src := customers()
	back := table.FromRecords(src.Columns, src.Records())
	if back.Len() != src.Len() {
		t.Fatalf("len = %d, want %d", back.Len(), src.Len())
	}
	for r := range src.Rows {
		for i := range src.Columns {
			if back.Rows[r][i] != src.Rows[r][i] {
				t.Fatalf("cell %d/%d = %v, want %v", r, i, back.Rows[r][i], src.Rows[r][i])
			}
		}
	}

	partial := table.FromRecords([]string{"CustomerId", "cluster"}, []map[string]any{{"CustomerId": int64(9), "extra": "x"}})
	if partial.Rows[0][1] != nil {
		t.Fatalf("missing key should be nil, got %v", partial.Rows[0][1])
	}
}
