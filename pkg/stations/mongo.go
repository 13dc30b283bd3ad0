package stations

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/countdown/pkg/ctdf"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type stopDocument struct {
	Code      string  `bson:"code"`
	Name      string  `bson:"name"`
	Towards   string  `bson:"towards"`
	Indicator string  `bson:"indicator"`
	Latitude  float64 `bson:"latitude"`
	Longitude float64 `bson:"longitude"`
	Kind      int     `bson:"kind"`
	Category  string  `bson:"category"`
	Favourite bool    `bson:"favourite"`
}

func (d stopDocument) toStop() ctdf.Stop {
	return ctdf.Stop{
		ID:        d.Code,
		Name:      d.Name,
		Towards:   d.Towards,
		Indicator: d.Indicator,
		Latitude:  d.Latitude,
		Longitude: d.Longitude,
		Kind:      ctdf.StopKind(d.Kind),
		Favourite: d.Favourite,
	}
}

// MongoStore keeps stops in the "stops" collection of a shared MongoDB deployment
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func OpenMongo(ctx context.Context, connectionString string, databaseName string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(connectionString))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, err
	}

	collection := client.Database(databaseName).Collection("stops")
	_, err = collection.Indexes().CreateMany(connectCtx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("create stop indexes: %w", err)
	}

	log.Info().Str("database", databaseName).Msg("Connected to stations MongoDB")

	return &MongoStore{client: client, collection: collection}, nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

func (s *MongoStore) HasStations(ctx context.Context) (bool, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{"category": recordCategoryStation}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count stations: %w", err)
	}

	return count > 0, nil
}

func (s *MongoStore) ImportStations(ctx context.Context, path string) (int, error) {
	records, err := ParseStationsFile(path)
	if err != nil {
		return 0, err
	}

	var operations []mongo.WriteModel
	for _, record := range records {
		operations = append(operations, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"code": record.Code}).
			SetUpdate(bson.M{
				"$set": bson.M{
					"name":      record.Name,
					"latitude":  record.Latitude,
					"longitude": record.Longitude,
					"kind":      int(ctdf.StopKindNone),
					"category":  recordCategoryStation,
				},
				"$setOnInsert": bson.M{"favourite": false},
			}).
			SetUpsert(true))
	}

	if len(operations) > 0 {
		if _, err := s.collection.BulkWrite(ctx, operations, options.BulkWrite().SetOrdered(false)); err != nil {
			return 0, fmt.Errorf("bulk write stations: %w", err)
		}
	}

	log.Info().Int("stations", len(records)).Str("path", path).Msg("Imported stations")

	return len(records), nil
}

func (s *MongoStore) AddStop(ctx context.Context, stop ctdf.Stop) error {
	_, err := s.collection.UpdateOne(ctx,
		bson.M{"code": stop.ID},
		bson.M{
			"$set": bson.M{
				"name":      stop.Name,
				"towards":   stop.Towards,
				"indicator": stop.Indicator,
				"latitude":  stop.Latitude,
				"longitude": stop.Longitude,
				"kind":      int(stop.Kind),
			},
			"$setOnInsert": bson.M{"category": recordCategoryStop, "favourite": false},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("add stop %s: %w", stop.ID, err)
	}

	return nil
}

func (s *MongoStore) SetFavourite(ctx context.Context, code string, favourite bool) error {
	result, err := s.collection.UpdateOne(ctx, bson.M{"code": code}, bson.M{"$set": bson.M{"favourite": favourite}})
	if err != nil {
		return fmt.Errorf("set favourite %s: %w", code, err)
	}

	if result.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *MongoStore) IsFavourite(ctx context.Context, code string) (bool, error) {
	var document stopDocument
	err := s.collection.FindOne(ctx, bson.M{"code": code}).Decode(&document)
	if err == mongo.ErrNoDocuments {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("is favourite %s: %w", code, err)
	}

	return document.Favourite, nil
}

func (s *MongoStore) QueryStops(ctx context.Context, category Category) ([]ctdf.Stop, error) {
	filter := bson.M{}

	switch category {
	case CategoryBus:
		filter = bson.M{"category": recordCategoryStop, "kind": int(ctdf.StopKindBus)}
	case CategoryRiver:
		filter = bson.M{"category": recordCategoryStop, "kind": int(ctdf.StopKindRiver)}
	case CategoryStation:
		filter = bson.M{"category": recordCategoryStation}
	case CategoryFavourite:
		filter = bson.M{"favourite": true}
	}

	cursor, err := s.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "code", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("query stops: %w", err)
	}

	var documents []stopDocument
	if err := cursor.All(ctx, &documents); err != nil {
		return nil, fmt.Errorf("decode stops: %w", err)
	}

	stops := make([]ctdf.Stop, 0, len(documents))
	for _, document := range documents {
		stops = append(stops, document.toStop())
	}

	return stops, nil
}
