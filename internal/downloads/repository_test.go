package downloads

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-sitecms/internal/apperrors"
	"github.com/goliatone/go-sitecms/pkg/testsupport"
)

func TestRepositories(t *testing.T) {
	factories := map[string]func(t *testing.T) Repository{
		"memory": func(*testing.T) Repository { return NewMemoryRepository() },
		"bun": func(t *testing.T) Repository {
			return NewBunRepository(testsupport.NewBunDB(t, Migrate))
		},
	}
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := factory(t)

			if _, err := repo.Mapping(ctx, "missing.pdf"); !apperrors.IsNotFound(err) {
				t.Fatalf("expected not found, got %v", err)
			}
			if _, err := repo.SaveMapping(ctx, &FileSegmentMapping{FileKey: "a.pdf", SegmentID: 1, Tags: []string{"x"}}); err != nil {
				t.Fatalf("save mapping: %v", err)
			}
			if _, err := repo.SaveMapping(ctx, &FileSegmentMapping{FileKey: "a.pdf", SegmentID: 2, Tags: []string{"y", "z"}}); err != nil {
				t.Fatalf("update mapping: %v", err)
			}
			mapping, err := repo.Mapping(ctx, "a.pdf")
			if err != nil {
				t.Fatalf("mapping: %v", err)
			}
			if mapping.SegmentID != 2 || len(mapping.Tags) != 2 {
				t.Fatalf("mapping not updated: %+v", mapping)
			}

			base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			for i, mail := range []string{"a@example.com", "b@example.com"} {
				req := validRequest()
				req.Email = mail
				req.CreatedAt = base.Add(time.Duration(i) * time.Hour)
				if _, err := repo.Create(ctx, &req); err != nil {
					t.Fatalf("create: %v", err)
				}
			}
			latest, err := repo.List(ctx, 1)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(latest) != 1 || latest[0].Email != "b@example.com" {
				t.Fatalf("unexpected latest %+v", latest)
			}
		})
	}
}
