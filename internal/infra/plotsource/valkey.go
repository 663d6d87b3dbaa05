package plotsource

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/ecoplot/internal/domain/plot"
)

// ValkeySource reads plot documents from Valkey.
//
// Layout under prefix p:
//
//	p:users                     hash   userID -> display name
//	p:user:{uid}:plots          zset   plotID scored by lastEdited millis
//	p:plot:{uid}:{pid}          string plot JSON
//	p:plot:{uid}:{pid}:plants   list   plant JSON documents
type ValkeySource struct {
	client valkey.Client
	prefix string
}

// NewValkeySource constructs the source.
func NewValkeySource(client valkey.Client, prefix string) *ValkeySource {
	if prefix == "" {
		prefix = "ecoplot"
	}
	return &ValkeySource{client: client, prefix: prefix}
}

// ListUsers implements plot.Source.
func (s *ValkeySource) ListUsers(ctx context.Context) ([]plot.User, error) {
	entries, err := s.client.Do(ctx, s.client.B().Hgetall().Key(s.usersKey()).Build()).AsStrMap()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	users := make([]plot.User, 0, len(entries))
	for id, name := range entries {
		users = append(users, plot.User{ID: id, Name: name})
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// ListPlots implements plot.Source. The sorted set gives newest-first order.
func (s *ValkeySource) ListPlots(ctx context.Context, userID string) ([]plot.PlotDocument, error) {
	ids, err := s.client.Do(ctx, s.client.B().Zrevrange().Key(s.plotsKey(userID)).Start(0).Stop(-1).Build()).AsStrSlice()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	cmds := make(valkey.Commands, 0, len(ids))
	for _, id := range ids {
		cmds = append(cmds, s.client.B().Get().Key(s.plotKey(userID, id)).Build())
	}
	docs := make([]plot.PlotDocument, 0, len(ids))
	for i, res := range s.client.DoMulti(ctx, cmds...) {
		payload, err := res.ToString()
		if err != nil {
			if valkey.IsValkeyNil(err) {
				docs = append(docs, indexedPlotDocument(ids[i], "", false))
				continue
			}
			return nil, err
		}
		docs = append(docs, indexedPlotDocument(ids[i], payload, true))
	}
	return docs, nil
}

// indexedPlotDocument decodes the body stored for an indexed plot id. A
// missing or malformed body degrades to an id-only document so the domain
// decoder fills defaults and sibling plots still load.
func indexedPlotDocument(id, payload string, found bool) plot.PlotDocument {
	if !found {
		return plot.PlotDocument{ID: id}
	}
	doc, err := decodePlotDocument([]byte(payload))
	if err != nil {
		return plot.PlotDocument{ID: id}
	}
	if doc.ID == "" {
		doc.ID = id
	}
	return doc
}

// ListPlants implements plot.Source.
func (s *ValkeySource) ListPlants(ctx context.Context, userID, plotID string) ([]plot.PlantDocument, error) {
	items, err := s.client.Do(ctx, s.client.B().Lrange().Key(s.plantsKey(userID, plotID)).Start(0).Stop(-1).Build()).AsStrSlice()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	docs := make([]plot.PlantDocument, 0, len(items))
	for _, item := range items {
		docs = append(docs, decodePlantDocument([]byte(item)))
	}
	return docs, nil
}

// PutPlot writes a user's plot and replaces its plant list.
func (s *ValkeySource) PutPlot(ctx context.Context, user plot.User, doc plot.PlotDocument, plants []plot.PlantDocument) error {
	if doc.ID == "" {
		return fmt.Errorf("plot id required")
	}
	payload, err := encodePlotDocument(doc)
	if err != nil {
		return err
	}
	cmds := valkey.Commands{
		s.client.B().Hset().Key(s.usersKey()).FieldValue().FieldValue(user.ID, user.Name).Build(),
		s.client.B().Set().Key(s.plotKey(user.ID, doc.ID)).Value(string(payload)).Build(),
		s.client.B().Zadd().Key(s.plotsKey(user.ID)).ScoreMember().ScoreMember(float64(doc.LastEdited.UnixMilli()), doc.ID).Build(),
		s.client.B().Del().Key(s.plantsKey(user.ID, doc.ID)).Build(),
	}
	if len(plants) > 0 {
		elems := make([]string, 0, len(plants))
		for _, p := range plants {
			raw, err := json.Marshal(p)
			if err != nil {
				return err
			}
			elems = append(elems, string(raw))
		}
		cmds = append(cmds, s.client.B().Rpush().Key(s.plantsKey(user.ID, doc.ID)).Element(elems...).Build())
	}
	for _, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return err
		}
	}
	return nil
}

func (s *ValkeySource) usersKey() string {
	return s.prefix + ":users"
}

func (s *ValkeySource) plotsKey(userID string) string {
	return fmt.Sprintf("%s:user:%s:plots", s.prefix, userID)
}

func (s *ValkeySource) plotKey(userID, plotID string) string {
	return fmt.Sprintf("%s:plot:%s:%s", s.prefix, userID, plotID)
}

func (s *ValkeySource) plantsKey(userID, plotID string) string {
	return s.plotKey(userID, plotID) + ":plants"
}

var _ plot.Source = (*ValkeySource)(nil)
