package migrations

import (
	"strings"
	"testing"
)

func TestSplit(t *testing.T) {
	got := Split(`
-- comment
DROP TABLE IF EXISTS a;
CREATE TABLE a (
    id INT
);

SELECT 1`)
	if len(got) != 3 {
		t.Fatalf("expected 3 statements, got %d: %q", len(got), got)
	}
	if !strings.HasPrefix(got[1], "CREATE TABLE a (") || strings.HasSuffix(got[1], ";") {
		t.Fatalf("unexpected statement %q", got[1])
	}
}

func TestLoadEmbedded(t *testing.T) {
	mysql, err := Load(MySQL)
	if err != nil {
		t.Fatalf("load mysql: %v", err)
	}
	if len(mysql) != 4 {
		t.Fatalf("expected 4 mysql statements, got %d", len(mysql))
	}
	if !strings.Contains(mysql[3], "customer_spend_score") {
		t.Fatalf("spend score table should be created last: %q", mysql[3])
	}

	ch, err := Load(ClickHouse)
	if err != nil {
		t.Fatalf("load clickhouse: %v", err)
	}
	if len(ch) != 1 || !strings.Contains(ch[0], "cluster_assignments") {
		t.Fatalf("unexpected clickhouse statements: %q", ch)
	}
}
