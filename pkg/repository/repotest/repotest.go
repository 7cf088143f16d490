// Package repotest provides an isolated, migrated store for tests.
package repotest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/kutbudev/decktree/internal/dbctx"
	"github.com/kutbudev/decktree/internal/logger"
	"github.com/kutbudev/decktree/pkg/config"
	"github.com/kutbudev/decktree/pkg/models"
	"github.com/kutbudev/decktree/pkg/repository"
	"gorm.io/driver/sqlite"
	gormLogger "gorm.io/gorm/logger"
)

// DB opens a fresh in-memory sqlite database, migrated and closed on cleanup.
func DB(tb testing.TB) *repository.Database {
	tb.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := repository.Open(
		sqlite.Open(dsn),
		config.DriverSQLite,
		gormLogger.Default.LogMode(gormLogger.Silent),
		logger.Nop(),
	)
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	tb.Cleanup(func() {
		_ = db.Close()
	})
	if err := db.Migrate(context.Background()); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	return db
}

// Seed is a small helper for building decks and slides in tests.
type Seed struct {
	tb    testing.TB
	Nodes repository.NodeRepository
	Edges repository.EdgeRepository
	seq   map[uuid.UUID]int
}

func NewSeed(tb testing.TB, db *repository.Database) *Seed {
	return &Seed{
		tb:    tb,
		Nodes: repository.NewNodeRepository(db.DB, logger.Nop()),
		Edges: repository.NewEdgeRepository(db.DB, logger.Nop()),
		seq:   map[uuid.UUID]int{},
	}
}

func (s *Seed) node(kind models.Kind, name string) *models.Node {
	s.tb.Helper()
	n, err := s.Nodes.Create(ctx(), kind, name)
	if err != nil {
		s.tb.Fatalf("seed %s %q: %v", kind, name, err)
	}
	return n
}

func (s *Seed) Deck(name string) *models.Node {
	s.tb.Helper()
	return s.node(models.KindDeck, name)
}

func (s *Seed) Slide(name string) *models.Node {
	s.tb.Helper()
	return s.node(models.KindSlide, name)
}

// Slides creates n slides named "<prefix> 1".."<prefix> n".
func (s *Seed) Slides(prefix string, n int) []*models.Node {
	s.tb.Helper()
	out := make([]*models.Node, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, s.Slide(fmt.Sprintf("%s %d", prefix, i)))
	}
	return out
}

// Link adds children under head with increasing sequence numbers.
func (s *Seed) Link(head *models.Node, children ...*models.Node) {
	s.tb.Helper()
	for _, c := range children {
		seq := s.seq[head.ID]
		s.seq[head.ID] = seq + 1
		if _, err := s.Edges.Create(ctx(), head.Ref(), c.Ref(), &seq); err != nil {
			s.tb.Fatalf("seed edge %s -> %s: %v", head.Name, c.Name, err)
		}
	}
}

func ctx() dbctx.Context {
	return dbctx.New(context.Background())
}
