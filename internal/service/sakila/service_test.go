package sakila

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmehdipour/segment-reports/internal/cluster"
	"github.com/jmehdipour/segment-reports/internal/model"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"
)

type fakeRepo struct {
	films    []model.FilmCustomer
	cats     []model.CategoryCustomer
	features []model.InterestFeatures
	err      error
}

func (f *fakeRepo) CustomersByFilm(context.Context) ([]model.FilmCustomer, error) {
	return f.films, f.err
}

func (f *fakeRepo) CustomersByCategory(context.Context) ([]model.CategoryCustomer, error) {
	return f.cats, nil
}

func (f *fakeRepo) InterestFeatures(context.Context) ([]model.InterestFeatures, error) {
	return f.features, nil
}

type recordingSink struct{ events []model.AssignmentEvent }

func (r *recordingSink) Name() string { return "recording" }
func (r *recordingSink) Publish(_ context.Context, ev []model.AssignmentEvent) error {
	r.events = append(r.events, ev...)
	return nil
}

type recordingOpener struct{ paths []string }

func (r *recordingOpener) OpenFile(path string) string {
	r.paths = append(r.paths, path)
	return "file://" + path
}

func ref(id int64, name string) model.CustomerRef {
	return model.CustomerRef{CustomerID: id, Name: name, Email: name + "@sakilacustomer.org", Active: 1}
}

func sampleRepo() *fakeRepo {
	r := &fakeRepo{
		films: []model.FilmCustomer{
			{FilmID: 1, FilmTitle: "ACADEMY DINOSAUR", CustomerRef: ref(1, "MARY")},
			{FilmID: 1, FilmTitle: "ACADEMY DINOSAUR", CustomerRef: ref(2, "PATRICIA")},
			{FilmID: 2, FilmTitle: "ACE GOLDFINGER", CustomerRef: ref(3, "LINDA")},
		},
		cats: []model.CategoryCustomer{
			{CategoryID: 1, Category: "Action", CustomerRef: ref(1, "MARY")},
			{CategoryID: 5, Category: "Comedy", CustomerRef: ref(2, "PATRICIA")},
			{CategoryID: 5, Category: "Comedy", CustomerRef: ref(3, "LINDA")},
		},
	}
	// three activity tiers
	for i := int64(1); i <= 12; i++ {
		base := 10 * ((i - 1) / 4)
		r.features = append(r.features, model.InterestFeatures{
			CustomerID: i, Name: "C", Rentals: base + i%4 + 10, DistinctFilms: base + i%4 + 9, DistinctCategories: base/10 + 3,
		})
	}
	return r
}

func options(dir string) Options {
	return Options{OutputDir: dir, KMeans: cluster.KMeans{K: 4, NInit: 10, MaxIter: 300, Tol: 1e-4, Seed: 42}}
}

func TestRun(t *testing.T) {
	Convey("Given a sakila database with rentals", t, func() {
		dir := t.TempDir()
		var out bytes.Buffer
		snk := &recordingSink{}
		opener := &recordingOpener{}
		repo := sampleRepo()

		res, err := New(repo, options(dir), &out, snk, opener).Run(context.Background())
		So(err, ShouldBeNil)

		Convey("Then all six reports are written", func() {
			So(len(res.Files), ShouldEqual, 6)
			for _, name := range []string{FilmHTML, FilmXLSX, CategoryHTML, CategoryXLSX, ClusterHTML, ClusterXLSX} {
				_, err := os.Stat(filepath.Join(dir, name))
				So(err, ShouldBeNil)
			}
		})

		Convey("And the console shows grouped customers and cluster sizes", func() {
			So(out.String(), ShouldContainSubstring, "=== FilmTitle: ACADEMY DINOSAUR (customers: 2) ===")
			So(out.String(), ShouldContainSubstring, "=== Category: Comedy (customers: 2) ===")
			So(out.String(), ShouldContainSubstring, "Cluster sizes:")
		})

		Convey("And every customer gets exactly one label below k", func() {
			So(len(snk.events), ShouldEqual, len(repo.features))
			for i, ev := range snk.events {
				So(ev.CustomerID, ShouldEqual, repo.features[i].CustomerID)
				So(ev.Cluster, ShouldBeBetweenOrEqual, 0, 3)
				So(ev.RunID, ShouldEqual, res.RunID)
			}
			total := 0
			for _, n := range res.Sizes {
				total += n
			}
			So(total, ShouldEqual, len(repo.features))
		})

		Convey("And the category workbook has one sheet per category plus the combined one", func() {
			f, err := excelize.OpenFile(filepath.Join(dir, CategoryXLSX))
			So(err, ShouldBeNil)
			defer f.Close()
			So(f.GetSheetList(), ShouldResemble, []string{"CustomersByCategory", "Action", "Comedy"})
		})

		Convey("And the film workbook is one flat sheet", func() {
			f, err := excelize.OpenFile(filepath.Join(dir, FilmXLSX))
			So(err, ShouldBeNil)
			defer f.Close()
			So(f.GetSheetList(), ShouldResemble, []string{"CustomersByFilm"})
			rows, err := f.GetRows("CustomersByFilm")
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, len(repo.films)+1)
		})

		Convey("And the category page is opened", func() {
			So(opener.paths, ShouldResemble, []string{filepath.Join(dir, CategoryHTML)})
			So(res.Opened, ShouldEndWith, CategoryHTML)
		})

		Convey("And a second run reproduces the labels", func() {
			again := &recordingSink{}
			_, err := New(repo, options(t.TempDir()), &bytes.Buffer{}, again, nil).Run(context.Background())
			So(err, ShouldBeNil)
			for i := range snk.events {
				So(again.events[i].Cluster, ShouldEqual, snk.events[i].Cluster)
			}
		})
	})

	Convey("Given a database without rentals", t, func() {
		dir := t.TempDir()
		res, err := New(&fakeRepo{}, options(dir), &bytes.Buffer{}, nil, nil).Run(context.Background())

		Convey("Then empty but valid reports are written", func() {
			So(err, ShouldBeNil)
			So(len(res.Files), ShouldEqual, 6)
			b, err := os.ReadFile(filepath.Join(dir, ClusterHTML))
			So(err, ShouldBeNil)
			So(string(b), ShouldContainSubstring, "No rows to show.")
		})
	})

	Convey("Given a failing query", t, func() {
		var out bytes.Buffer
		boom := errors.New("connection refused")
		_, err := New(&fakeRepo{err: boom}, options(t.TempDir()), &out, nil, nil).Run(context.Background())

		Convey("Then the run stops with a diagnostic", func() {
			So(errors.Is(err, boom), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "customers by film")
			So(out.String(), ShouldContainSubstring, "[ERROR] customers by film query failed")
		})
	})
}

func TestTables(t *testing.T) {
	tbl := ClusterTable([]model.InterestFeatures{{CustomerID: 7, Name: "X", Rentals: 3, DistinctFilms: 2, DistinctCategories: 1}}, []int{2})
	if got := tbl.Rows[0][5]; got != 2 {
		t.Fatalf("label cell = %v", got)
	}
	if FilmTable(nil).Len() != 0 || CategoryTable(nil).Len() != 0 {
		t.Fatal("empty input should give empty tables")
	}
}
