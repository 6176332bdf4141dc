// Package neo4j reads snapshots from a family graph stored in Neo4j.
//
// The graph uses one label and two relationship types:
//
//	(:Person {tree_id, id, first_name, last_name, gender, birth_date, ...})
//	(:Person)-[:PARENT_OF]->(:Person)
//	(:Person)-[:PARTNER_OF {ex: bool}]-(:Person)
//
// Person properties use the same names as the snapshot JSON and are decoded
// with mapstructure. A snapshot is assembled from a handful of small
// read queries around the focal person.
package neo4j

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	"github.com/mitchellh/mapstructure"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/snapshot"
)

// Runner executes a read query and returns its buffered result. [Executor]
// implements it with the official driver.
type Runner interface {
	Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error)
}

// Executor runs queries against one database of a Neo4j server.
type Executor struct {
	Driver neo4j.DriverWithContext
	DBName string
}

// NewExecutor connects to uri with basic auth. The connection is verified
// before returning.
func NewExecutor(ctx context.Context, uri, username, password, dbName string) (*Executor, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "neo4j driver for %s", uri)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to %s", uri)
	}
	return &Executor{Driver: driver, DBName: dbName}, nil
}

// Run executes query in a managed read transaction.
func (e *Executor) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	opts := []neo4j.ExecuteQueryConfigurationOption{neo4j.ExecuteQueryWithReadersRouting()}
	if e.DBName != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(e.DBName))
	}
	result, err := neo4j.ExecuteQuery(ctx, e.Driver, query, params, neo4j.EagerResultTransformer, opts...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "neo4j query")
	}
	return result, nil
}

// Close closes the driver.
func (e *Executor) Close(ctx context.Context) error { return e.Driver.Close(ctx) }

const (
	qFocal = `MATCH (f:Person {tree_id: $tree, id: $focal})
RETURN properties(f) AS person`

	qDefault = `MATCH (f:Person {tree_id: $tree})
RETURN properties(f) AS person ORDER BY f.id LIMIT 1`

	qPartner = `MATCH (:Person {tree_id: $tree, id: $focal})-[r:PARTNER_OF]-(p:Person)
RETURN properties(p) AS person, coalesce(r.ex, false) AS ex
ORDER BY ex, p.id LIMIT 1`

	qParents = `MATCH (p:Person)-[:PARENT_OF]->(:Person {tree_id: $tree, id: $focal})
RETURN properties(p) AS person ORDER BY p.id LIMIT 2`

	qCoupleEx = `MATCH (:Person {tree_id: $tree, id: $a})-[r:PARTNER_OF]-(:Person {tree_id: $tree, id: $b})
RETURN coalesce(r.ex, false) AS ex LIMIT 1`

	qSiblings = `MATCH (p:Person)-[:PARENT_OF]->(s:Person)
WHERE p.tree_id = $tree AND p.id IN $parents AND s.id <> $focal
WITH s, count(DISTINCT p) AS shared
RETURN properties(s) AS person, shared
ORDER BY s.birth_date, s.id`

	qChildren = `MATCH (:Person {tree_id: $tree, id: $focal})-[:PARENT_OF]->(c:Person)
OPTIONAL MATCH (o:Person)-[:PARENT_OF]->(c) WHERE o.id <> $focal
RETURN properties(c) AS person, collect(o.id) AS others
ORDER BY c.birth_date, c.id`
)

// Source assembles snapshots from the graph.
type Source struct {
	runner Runner
}

// New returns a source running its queries through r.
func New(r Runner) *Source { return &Source{runner: r} }

// Close closes the runner if it holds a connection.
func (s *Source) Close(ctx context.Context) error {
	if c, ok := s.runner.(interface{ Close(context.Context) error }); ok {
		return c.Close(ctx)
	}
	return nil
}

// Snapshot queries the neighbourhood of focalID and assembles the snapshot.
func (s *Source) Snapshot(ctx context.Context, treeID, focalID string) (*snapshot.Snapshot, error) {
	params := map[string]any{"tree": treeID, "focal": focalID}

	q := qFocal
	if focalID == "" {
		q = qDefault
	}
	focal, err := s.people(ctx, q, params)
	if err != nil {
		return nil, err
	}
	if len(focal) == 0 {
		return nil, errors.New(errors.ErrCodeSnapshotNotFound, "no person %q in tree %s", focalID, treeID)
	}
	snap := &snapshot.Snapshot{Tree: snapshot.Tree{ID: treeID}, Focal: &focal[0]}
	params["focal"] = snap.Focal.ID

	if err := s.partner(ctx, snap, params); err != nil {
		return nil, err
	}
	if err := s.parents(ctx, snap, params); err != nil {
		return nil, err
	}
	if err := s.children(ctx, snap, params); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Source) partner(ctx context.Context, snap *snapshot.Snapshot, params map[string]any) error {
	res, err := s.runner.Run(ctx, qPartner, params)
	if err != nil {
		return err
	}
	if len(res.Records) == 0 {
		return nil
	}
	p, err := decodePerson(res.Records[0])
	if err != nil {
		return err
	}
	snap.Partner = &p
	snap.PartnerEx = boolField(res.Records[0], "ex")
	return nil
}

func (s *Source) parents(ctx context.Context, snap *snapshot.Snapshot, params map[string]any) error {
	parents, err := s.people(ctx, qParents, params)
	if err != nil || len(parents) == 0 {
		return err
	}
	ids := make([]string, len(parents))
	for i := range parents {
		ids[i] = parents[i].ID
	}
	snap.Parent1 = &parents[0]
	if len(parents) > 1 {
		snap.Parent2 = &parents[1]
		res, err := s.runner.Run(ctx, qCoupleEx, map[string]any{"tree": params["tree"], "a": ids[0], "b": ids[1]})
		if err != nil {
			return err
		}
		if len(res.Records) > 0 {
			snap.ParentsEx = boolField(res.Records[0], "ex")
		}
	}

	res, err := s.runner.Run(ctx, qSiblings, map[string]any{
		"tree": params["tree"], "focal": params["focal"], "parents": ids,
	})
	if err != nil {
		return err
	}
	for _, rec := range res.Records {
		p, err := decodePerson(rec)
		if err != nil {
			return err
		}
		if intField(rec, "shared") >= int64(len(ids)) {
			snap.Siblings = append(snap.Siblings, p)
		} else {
			snap.HalfSiblings = append(snap.HalfSiblings, p)
		}
	}
	return nil
}

func (s *Source) children(ctx context.Context, snap *snapshot.Snapshot, params map[string]any) error {
	res, err := s.runner.Run(ctx, qChildren, params)
	if err != nil {
		return err
	}
	for _, rec := range res.Records {
		p, err := decodePerson(rec)
		if err != nil {
			return err
		}
		if snap.Partner != nil && slices.Contains(stringsField(rec, "others"), snap.Partner.ID) {
			snap.PartnerChildren = append(snap.PartnerChildren, p)
		} else {
			snap.SoloChildren = append(snap.SoloChildren, p)
		}
	}
	return nil
}

func (s *Source) people(ctx context.Context, query string, params map[string]any) ([]snapshot.Person, error) {
	res, err := s.runner.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	out := make([]snapshot.Person, 0, len(res.Records))
	for _, rec := range res.Records {
		p, err := decodePerson(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// decodePerson maps the "person" property map of rec onto a Person.
// Non-string scalars (years stored as integers, say) are converted.
func decodePerson(rec *neo4j.Record) (snapshot.Person, error) {
	var p snapshot.Person
	raw, ok := rec.Get("person")
	if !ok {
		return p, errors.New(errors.ErrCodeInvalidFormat, "record has no person column")
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		WeaklyTypedInput: true,
		DecodeHook:       stringifyHook,
	})
	if err != nil {
		return p, err
	}
	if err := dec.Decode(raw); err != nil {
		return p, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode person")
	}
	return p, nil
}

// stringifyHook renders driver temporal values (neo4j.Date and friends) as
// their ISO-8601 strings.
func stringifyHook(from, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	if s, ok := data.(fmt.Stringer); ok {
		return s.String(), nil
	}
	return data, nil
}

func boolField(rec *neo4j.Record, key string) bool {
	v, _ := rec.Get(key)
	b, _ := v.(bool)
	return b
}

func intField(rec *neo4j.Record, key string) int64 {
	v, _ := rec.Get(key)
	n, _ := v.(int64)
	return n
}

func stringsField(rec *neo4j.Record, key string) []string {
	v, _ := rec.Get(key)
	list, _ := v.([]any)
	out := make([]string, 0, len(list))
	for _, x := range list {
		if s, ok := x.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
