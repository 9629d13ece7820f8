package model

// CustomerRef is the customer projection shared by the film and category reports.
type CustomerRef struct {
	CustomerID int64  `db:"CustomerID" json:"CustomerID"`
	Name       string `db:"Name"       json:"Name"`
	Email      string `db:"Email"      json:"Email"`
	Active     int    `db:"Active"     json:"Active"` // 1|0 as stored in sakila
}

// FilmCustomer is one distinct (film, customer) rental pair.
type FilmCustomer struct {
	FilmID    int64  `db:"FilmID"    json:"FilmID"`
	FilmTitle string `db:"FilmTitle" json:"FilmTitle"`
	CustomerRef
}

// CategoryCustomer is one distinct (category, customer) rental pair.
type CategoryCustomer struct {
	CategoryID int64  `db:"CategoryID" json:"CategoryID"`
	Category   string `db:"Category"   json:"Category"`
	CustomerRef
}

// InterestFeatures is the per-customer feature row clustered by the sakila job.
type InterestFeatures struct {
	CustomerID         int64  `db:"CustomerID"         json:"CustomerID"`
	Name               string `db:"Name"               json:"Name"`
	Rentals            int64  `db:"Rentals"            json:"Rentals"`
	DistinctFilms      int64  `db:"DistinctFilms"      json:"DistinctFilms"`
	DistinctCategories int64  `db:"DistinctCategories" json:"DistinctCategories"`
}

// Vector returns the clustering input in column order Rentals, DistinctFilms, DistinctCategories.
func (f InterestFeatures) Vector() []float64 {
	return []float64{float64(f.Rentals), float64(f.DistinctFilms), float64(f.DistinctCategories)}
}
