//go:build integration || !unit

package integration_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	server "flex_reviews/internal/adapters/http_server"
	"flex_reviews/internal/adapters/hostaway"
	redisad "flex_reviews/internal/adapters/redis"
	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
	mysqlrepo "flex_reviews/internal/storage/mysql"
)

const mockEnvelope = `{
  "status": "success",
  "result": [
    {
      "id": 7453,
      "type": "guest-to-host",
      "status": "published",
      "rating": null,
      "publicReview": "Shoreditch flat was spotless, great communication throughout.",
      "privateNote": "guest asked for a late checkout next time",
      "reviewCategory": [
        {"category": "cleanliness", "rating": 10},
        {"category": "communication", "rating": 9},
        {"category": "respect_house_rules", "rating": 8}
      ],
      "submittedAt": "2024-08-21 22:45:14",
      "guestName": "Shane Finkelstein",
      "listingId": "FLX-307",
      "listingName": "2B N1 A - 29 Shoreditch Heights",
      "channel": "hostaway"
    },
    {
      "id": 7891,
      "type": "guest-to-host",
      "status": "published",
      "rating": 8,
      "publicReview": "Good location, a bit noisy at night.",
      "reviewCategory": [],
      "submittedAt": "2024-09-02 10:15:00",
      "guestName": "Mira K",
      "listingId": "FLX-112",
      "listingName": "1B E2 C - Brick Lane Loft"
    }
  ]
}`

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=flexreviews",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/flexreviews?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		t.Fatalf("MIGRATIONS_DIR not set")
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(b)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// TestEndToEnd walks the whole path once: seed from a mock payload, list on
// the dashboard surface, approve, then read the public surface.
func TestEndToEnd(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)

	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)

	mockPath := filepath.Join(t.TempDir(), "mock_reviews.json")
	if err := os.WriteFile(mockPath, []byte(mockEnvelope), 0o644); err != nil {
		t.Fatalf("write mock payload: %v", err)
	}

	ctx := context.Background()
	ingest := app.NewIngestionService(hostaway.NewFileSource(mockPath), repo, cache, true)
	written, err := ingest.Seed(ctx, false)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if written != 2 {
		t.Fatalf("expected 2 reviews seeded, got %d", written)
	}

	// second seed without force is a no-op
	written, err = ingest.Seed(ctx, false)
	if err != nil || written != 0 {
		t.Fatalf("re-seed should be a no-op, got %d, %v", written, err)
	}

	srv := server.New(0)
	srv.MountHandlers(&server.Handlers{
		Q: app.NewQueryService(repo, cache, time.Minute),
		A: app.NewApprovalService(repo, cache),
	})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	// dashboard list: newest first, private notes visible, derived ratings in place
	var all []domain.Review
	getJSON(t, ts.URL+"/v1/reviews", &all)
	if len(all) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(all))
	}
	if all[0].ID != 7891 || all[1].ID != 7453 {
		t.Fatalf("expected newest first, got %d then %d", all[0].ID, all[1].ID)
	}
	first := all[1]
	if first.OverallRating == nil || *first.OverallRating != 9.0 {
		t.Fatalf("expected derived overall 9.0, got %v", first.OverallRating)
	}
	if first.SubmittedAt != "2024-08-21T22:45:14Z" {
		t.Fatalf("unexpected submittedAt %q", first.SubmittedAt)
	}
	if first.PrivateNote == nil {
		t.Fatalf("dashboard must include the private note")
	}
	if first.IsApproved {
		t.Fatalf("fresh reviews must start unapproved")
	}

	// nothing public before approval
	var approved []domain.Review
	getJSON(t, ts.URL+"/v1/reviews/approved", &approved)
	if len(approved) != 0 {
		t.Fatalf("expected empty public surface, got %d", len(approved))
	}

	// approve 7453 and check the public surface
	req, _ := http.NewRequest(http.MethodPatch, ts.URL+"/v1/reviews/approve",
		strings.NewReader(`{"reviewId": 7453, "approved": true}`))
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("approve status %d", res.StatusCode)
	}

	getJSON(t, ts.URL+"/v1/reviews/approved?listingId=FLX-307", &approved)
	if len(approved) != 1 || approved[0].ID != 7453 {
		t.Fatalf("unexpected approved set: %+v", approved)
	}
	if approved[0].PrivateNote != nil {
		t.Fatalf("public surface leaked the private note")
	}
	if !approved[0].IsApproved || approved[0].ApprovedAt == nil {
		t.Fatalf("approved review must carry approval state: %+v", approved[0])
	}

	// repeat read is served from the warmed cache
	var again []domain.Review
	getJSON(t, ts.URL+"/v1/reviews/approved?listingId=FLX-307", &again)
	if len(again) != 1 {
		t.Fatalf("expected cached read to succeed, got %d", len(again))
	}
}

func getJSON(t *testing.T, url string, dst any) {
	t.Helper()
	res, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}
