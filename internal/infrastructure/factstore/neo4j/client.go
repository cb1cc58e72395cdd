package neo4j

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/matkgb/mat-assistant/internal/core/domain"
	"github.com/matkgb/mat-assistant/internal/infrastructure/resilience"
)

// Store is the knowledge-graph backend. It serves read-only fact queries for
// answer composition and full graph rebuilds during ingestion.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
	query    *resilience.Operation
	logger   *slog.Logger
}

func New(ctx context.Context, uri, username, password, database string, executor *resilience.Executor, logger *slog.Logger) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}
	if database == "" {
		database = "neo4j"
	}
	return &Store{
		driver:   driver,
		database: database,
		query:    executor.For("graph query", classifyQueryError),
		logger:   logger,
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// Query runs a read-only Cypher statement and returns one key-value map per
// record.
func (s *Store) Query(ctx context.Context, cypher string) ([]map[string]any, error) {
	var rows []map[string]any
	call := func(ctx context.Context) error {
		session := s.driver.NewSession(ctx, neo4j.SessionConfig{
			DatabaseName: s.database,
			AccessMode:   neo4j.AccessModeRead,
		})
		defer session.Close(ctx)

		result, err := session.Run(ctx, cypher, nil)
		if err != nil {
			return fmt.Errorf("run cypher: %w", err)
		}
		rows = rows[:0]
		for result.Next(ctx) {
			rows = append(rows, result.Record().AsMap())
		}
		return result.Err()
	}

	if err := s.query.Do(ctx, call); err != nil {
		return nil, err
	}
	return rows, nil
}

// Ready reports whether the graph database currently answers.
func (s *Store) Ready(ctx context.Context) bool {
	return s.driver.VerifyConnectivity(ctx) == nil
}

// BuildGraph replaces the whole graph with entities and relationships
// extracted from the corpus. Labels and relationship types come from the
// fixed rule set, so string interpolation into Cypher is safe here.
func (s *Store) BuildGraph(ctx context.Context, docs []domain.Document) (domain.GraphStats, error) {
	entities := extractEntities(docs)
	relationships := extractRelationships(docs)

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	if _, err := session.Run(ctx, "MATCH (n) DETACH DELETE n", nil); err != nil {
		return domain.GraphStats{}, fmt.Errorf("clear graph: %w", err)
	}

	for _, e := range entities {
		query := fmt.Sprintf("MERGE (e:%s {name: $name})", e.Label)
		if _, err := session.Run(ctx, query, map[string]any{"name": e.Name}); err != nil {
			return domain.GraphStats{}, fmt.Errorf("merge entity %s %q: %w", e.Label, e.Name, err)
		}
	}

	for _, rel := range relationships {
		query := fmt.Sprintf(`
			MATCH (a {name: $source})
			MATCH (b {name: $target})
			MERGE (a)-[r:%s]->(b)
		`, rel.Type)
		params := map[string]any{"source": rel.Source, "target": rel.Target}
		if _, err := session.Run(ctx, query, params); err != nil {
			return domain.GraphStats{}, fmt.Errorf("merge relationship %s: %w", rel.Type, err)
		}
	}

	stats := domain.GraphStats{
		Entities:      len(entities),
		Relationships: len(relationships),
	}
	s.logger.Info("knowledge graph rebuilt", "entities", stats.Entities, "relationships", stats.Relationships)
	return stats, nil
}

// Connectivity problems heal on their own; a malformed Cypher statement is a
// programming error and retrying it only delays the answer.
func classifyQueryError(err error) resilience.Outcome {
	if neo4j.IsConnectivityError(err) {
		return resilience.Outcome{Retryable: true, RecordFailure: true}
	}
	return resilience.Outcome{RecordFailure: true}
}
