package databases

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/pa-prabumulih/sicantik-api/models"
)

// CaseStore adapts the cases collection to the registry's store collaborator.
// Reads come back sorted by case number descending, matching the ordering the
// cloud backing has always served to the list view.
type CaseStore struct {
	DB CaseDatabase
}

// NewCaseStore wraps a case database in the store collaborator interface
func NewCaseStore(db CaseDatabase) *CaseStore {
	return &CaseStore{DB: db}
}

// LoadAll returns the full cases collection
func (s *CaseStore) LoadAll(ctx context.Context) ([]models.Case, error) {
	sort := options.Find().SetSort(bson.D{{Key: "case.caseNumber", Value: -1}})
	cases, err := s.DB.Find(ctx, bson.D{}, sort)
	if err != nil {
		return nil, err
	}
	if cases == nil {
		cases = []models.Case{}
	}
	return cases, nil
}

// Save upserts a single case record
func (s *CaseStore) Save(ctx context.Context, c models.Case) error {
	opts := options.Replace().SetUpsert(true)
	return s.DB.ReplaceOne(ctx, bson.M{"_id": c.ID}, c, opts)
}

// Remove deletes a single case record
func (s *CaseStore) Remove(ctx context.Context, id primitive.ObjectID) error {
	return s.DB.DeleteOne(ctx, bson.M{"_id": id})
}

// Watch follows the collection change stream and delivers the reloaded
// collection after every change. Remote writes win over local state, so a
// full reload per event is the simplest correct behaviour at registry scale.
// Change streams need a replica set; standalone deployments log once and run
// without live updates.
func (s *CaseStore) Watch(ctx context.Context, onChange func([]models.Case)) error {
	stream, err := s.DB.Watch(ctx, mongoChangePipeline())
	if err != nil {
		return err
	}
	defer stream.Close(ctx)

	for stream.Next(ctx) {
		cases, err := s.LoadAll(ctx)
		if err != nil {
			zap.S().Warnw("case store: reload after change event failed", "error", err)
			time.Sleep(time.Second)
			continue
		}
		onChange(cases)
	}
	return stream.Err()
}

func mongoChangePipeline() interface{} {
	return bson.A{bson.M{"$match": bson.M{"operationType": bson.M{"$in": bson.A{"insert", "update", "replace", "delete"}}}}}
}
