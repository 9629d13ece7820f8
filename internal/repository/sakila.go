package repository

import (
	"context"

	"github.com/jmehdipour/segment-reports/internal/model"
	"github.com/jmoiron/sqlx"
)

// SakilaRepository reads rental facts from the sakila sample database.
type SakilaRepository interface {
	CustomersByFilm(ctx context.Context) ([]model.FilmCustomer, error)
	CustomersByCategory(ctx context.Context) ([]model.CategoryCustomer, error)
	InterestFeatures(ctx context.Context) ([]model.InterestFeatures, error)
}

type SakilaRepositoryImpl struct {
	db *sqlx.DB
}

func NewSakilaRepository(db *sqlx.DB) *SakilaRepositoryImpl {
	return &SakilaRepositoryImpl{db: db}
}

var _ SakilaRepository = (*SakilaRepositoryImpl)(nil)

const customerByFilmQuery = `
	SELECT DISTINCT
	       f.film_id                              AS FilmID,
	       f.title                                AS FilmTitle,
	       c.customer_id                          AS CustomerID,
	       CONCAT(c.first_name, ' ', c.last_name) AS Name,
	       COALESCE(c.email, '')                  AS Email,
	       c.active                               AS Active
	  FROM rental r
	  JOIN inventory i ON r.inventory_id = i.inventory_id
	  JOIN film f      ON i.film_id = f.film_id
	  JOIN customer c  ON r.customer_id = c.customer_id
	 ORDER BY f.title, c.customer_id
`

const customerByCategoryQuery = `
	SELECT DISTINCT
	       cat.category_id                        AS CategoryID,
	       cat.name                               AS Category,
	       c.customer_id                          AS CustomerID,
	       CONCAT(c.first_name, ' ', c.last_name) AS Name,
	       COALESCE(c.email, '')                  AS Email,
	       c.active                               AS Active
	  FROM rental r
	  JOIN inventory i      ON r.inventory_id = i.inventory_id
	  JOIN film f           ON i.film_id = f.film_id
	  JOIN film_category fc ON f.film_id = fc.film_id
	  JOIN category cat     ON fc.category_id = cat.category_id
	  JOIN customer c       ON r.customer_id = c.customer_id
	 ORDER BY cat.name, c.customer_id
`

// Customers without rentals keep zero counts through the LEFT JOINs.
const interestFeaturesQuery = `
	SELECT c.customer_id                          AS CustomerID,
	       CONCAT(c.first_name, ' ', c.last_name) AS Name,
	       COUNT(r.rental_id)                     AS Rentals,
	       COUNT(DISTINCT f.film_id)              AS DistinctFilms,
	       COUNT(DISTINCT cat.category_id)        AS DistinctCategories
	  FROM customer c
	  LEFT JOIN rental r         ON r.customer_id = c.customer_id
	  LEFT JOIN inventory i      ON r.inventory_id = i.inventory_id
	  LEFT JOIN film f           ON i.film_id = f.film_id
	  LEFT JOIN film_category fc ON f.film_id = fc.film_id
	  LEFT JOIN category cat     ON fc.category_id = cat.category_id
	 GROUP BY c.customer_id, c.first_name, c.last_name
	 ORDER BY Rentals DESC, c.customer_id
`

// CustomersByFilm returns distinct (film, customer) rental pairs ordered by title then customer id.
func (r *SakilaRepositoryImpl) CustomersByFilm(ctx context.Context) ([]model.FilmCustomer, error) {
	var rows []model.FilmCustomer
	if err := r.db.SelectContext(ctx, &rows, customerByFilmQuery); err != nil {
		return nil, err
	}
	return rows, nil
}

// CustomersByCategory returns distinct (category, customer) rental pairs ordered by category then customer id.
func (r *SakilaRepositoryImpl) CustomersByCategory(ctx context.Context) ([]model.CategoryCustomer, error) {
	var rows []model.CategoryCustomer
	if err := r.db.SelectContext(ctx, &rows, customerByCategoryQuery); err != nil {
		return nil, err
	}
	return rows, nil
}

// InterestFeatures returns one row per customer, most rentals first.
func (r *SakilaRepositoryImpl) InterestFeatures(ctx context.Context) ([]model.InterestFeatures, error) {
	var rows []model.InterestFeatures
	if err := r.db.SelectContext(ctx, &rows, interestFeaturesQuery); err != nil {
		return nil, err
	}
	return rows, nil
}
