package cmd

import (
	"fmt"
	"math/rand/v2"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var seedCount int

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the salesdatabase with deterministic demo customers and spend scores",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1) load config
		cfg, err := setup()
		if err != nil {
			return err
		}

		// 2) connect MySQL
		sqlDB, err := connectMySQL("salesdatabase", cfg.Databases.Sales)
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		fmt.Fprintf(cmd.OutOrStdout(), ">> Seeding %d demo customers...\n", seedCount)
		if err := seedCustomers(sqlDB, demoCustomers(seedCount, cfg.Clustering.Seed)); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), ">> Seed completed ✅")
		return nil
	},
}

func init() {
	seedCmd.Flags().IntVar(&seedCount, "count", 200, "number of demo customers")
}

type demoCustomer struct {
	ID            int
	FirstName     string
	LastName      string
	Gender        string
	Age           int
	Email         string
	AnnualIncome  int // k$
	SpendingScore int // 1..100
}

var (
	firstNames = []string{"Ana", "Bao", "Chen", "Dara", "Elif", "Femi", "Gus", "Hana", "Ivan", "Jun", "Kofi", "Lena", "Minh", "Nia", "Omar", "Priya"}
	lastNames  = []string{"Nguyen", "Smith", "Garcia", "Kim", "Okafor", "Rossi", "Tran", "Silva", "Haddad", "Novak"}
)

// segments roughly follow the mall-customer shape: age, income and score centers.
var segments = [][3]float64{
	{45, 26, 20}, // low income, low spend
	{25, 26, 79}, // low income, high spend
	{42, 55, 50}, // average
	{32, 87, 82}, // high income, high spend
	{41, 88, 17}, // high income, low spend
}

// demoCustomers is deterministic for a given n and seed.
func demoCustomers(n int, seed uint64) []demoCustomer {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	out := make([]demoCustomer, n)
	for i := range out {
		s := segments[rng.IntN(len(segments))]
		first := firstNames[rng.IntN(len(firstNames))]
		last := lastNames[rng.IntN(len(lastNames))]
		gender := "Female"
		if rng.IntN(2) == 0 {
			gender = "Male"
		}
		out[i] = demoCustomer{
			ID:            i + 1,
			FirstName:     first,
			LastName:      last,
			Gender:        gender,
			Age:           clamp(int(s[0]+rng.NormFloat64()*6), 18, 70),
			Email:         fmt.Sprintf("%s.%s%d@example.com", first, last, i+1),
			AnnualIncome:  clamp(int(s[1]+rng.NormFloat64()*8), 15, 140),
			SpendingScore: clamp(int(s[2]+rng.NormFloat64()*8), 1, 100),
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

// seedCustomers upserts both tables in one transaction (idempotent on CustomerID).
func seedCustomers(dbx *sqlx.DB, customers []demoCustomer) error {
	const qCustomer = `
INSERT INTO customer
    (CustomerID, FirstName, LastName, Gender, Age, Email)
VALUES
    (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
    FirstName = VALUES(FirstName),
    LastName  = VALUES(LastName),
    Gender    = VALUES(Gender),
    Age       = VALUES(Age),
    Email     = VALUES(Email)
`
	const qScore = `
INSERT INTO customer_spend_score
    (CustomerID, Annual_Income, Spending_Score)
VALUES
    (?, ?, ?)
ON DUPLICATE KEY UPDATE
    Annual_Income  = VALUES(Annual_Income),
    Spending_Score = VALUES(Spending_Score)
`
	tx, err := dbx.Beginx()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, c := range customers {
		if _, err := tx.Exec(qCustomer, c.ID, c.FirstName, c.LastName, c.Gender, c.Age, c.Email); err != nil {
			return fmt.Errorf("insert customer %d: %w", c.ID, err)
		}
		if _, err := tx.Exec(qScore, c.ID, c.AnnualIncome, c.SpendingScore); err != nil {
			return fmt.Errorf("insert spend score %d: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit customers: %w", err)
	}
	return nil
}
