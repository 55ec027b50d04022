// Package mongostore implements events.Store on top of a MongoDB collection
// filled by the scraper pipeline.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"etkinlik-bot/internal/events"
)

type document struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	City        string             `bson:"city"`
	Category    string             `bson:"category"`
	Date        string             `bson:"date"`
	Time        string             `bson:"time"`
	Venue       string             `bson:"venue"`
	Address     string             `bson:"address"`
	Price       string             `bson:"price"`
	URL         string             `bson:"url"`
	ImageURL    string             `bson:"image_url,omitempty"`
	Organizer   string             `bson:"organizer"`
	Tags        []string           `bson:"tags,omitempty"`
	CreatedAt   time.Time          `bson:"created_at,omitempty"`
	UpdatedAt   time.Time          `bson:"updated_at,omitempty"`
}

func (d document) event() events.Event {
	return events.Event{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		City:        d.City,
		Category:    d.Category,
		Date:        d.Date,
		Time:        d.Time,
		Venue:       d.Venue,
		Address:     d.Address,
		Price:       d.Price,
		URL:         d.URL,
		ImageURL:    d.ImageURL,
		Organizer:   d.Organizer,
		Tags:        d.Tags,
	}
}

func fromEvent(ev events.Event, now time.Time) document {
	d := document{
		Title:       ev.Title,
		Description: ev.Description,
		City:        ev.City,
		Category:    ev.Category,
		Date:        ev.Date,
		Time:        ev.Time,
		Venue:       ev.Venue,
		Address:     ev.Address,
		Price:       ev.Price,
		URL:         ev.URL,
		ImageURL:    ev.ImageURL,
		Organizer:   ev.Organizer,
		Tags:        ev.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if id, err := primitive.ObjectIDFromHex(ev.ID); err == nil {
		d.ID = id
	}
	return d
}

// Store reads events from a single collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var (
	_ events.Store  = (*Store)(nil)
	_ events.Writer = (*Store)(nil)
	_ events.Editor = (*Store)(nil)
)

// Open connects to uri, pings the server and ensures the query index exists.
func Open(ctx context.Context, uri, database, collection string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	s := &Store{client: client, coll: client.Database(database).Collection(collection)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "city", Value: 1}, {Key: "date", Value: 1}, {Key: "category", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func buildFilter(f events.Filter) bson.M {
	q := bson.M{}
	if f.City != "" {
		q["city"] = f.City
	}
	if f.Category != "" && f.Category != events.CategoryAll {
		q["category"] = f.Category
	}
	date := bson.M{}
	if f.DateFrom != "" {
		date["$gte"] = f.DateFrom
	}
	if f.DateTo != "" {
		date["$lte"] = f.DateTo
	}
	if len(date) > 0 {
		q["date"] = date
	}
	return q
}

func (s *Store) Find(ctx context.Context, f events.Filter) ([]events.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	cur, err := s.coll.Find(ctx, buildFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	defer cur.Close(ctx)

	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}
	out := make([]events.Event, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.event())
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context, f events.Filter) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, buildFilter(f))
	if err != nil {
		return 0, fmt.Errorf("mongo count: %w", err)
	}
	return n, nil
}

func (s *Store) Distinct(ctx context.Context, field string) ([]string, error) {
	if field != "city" && field != "category" {
		return nil, fmt.Errorf("distinct: unsupported field %q", field)
	}
	raw, err := s.coll.Distinct(ctx, field, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongo distinct: %w", err)
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if str, ok := v.(string); ok {
			out = append(out, str)
		}
	}
	return out, nil
}

func (s *Store) InsertMany(ctx context.Context, evs []events.Event) error {
	if len(evs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(evs))
	for _, ev := range evs {
		docs = append(docs, fromEvent(ev, now))
	}
	if _, err := s.coll.InsertMany(ctx, docs); err != nil {
		var bwe mongo.BulkWriteException
		if errors.As(err, &bwe) {
			return fmt.Errorf("mongo insert: %d write errors: %w", len(bwe.WriteErrors), err)
		}
		return fmt.Errorf("mongo insert: %w", err)
	}
	return nil
}

func (s *Store) DeleteAll(ctx context.Context) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	return nil
}

// objectID maps an event ID to its _id. IDs that are not ObjectID hex
// cannot exist in the collection.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, events.ErrNotFound
	}
	return oid, nil
}

// updateFields is the $set document of Update. created_at is left alone.
func updateFields(ev events.Event, now time.Time) bson.M {
	d := fromEvent(ev, now)
	return bson.M{
		"title":       d.Title,
		"description": d.Description,
		"city":        d.City,
		"category":    d.Category,
		"date":        d.Date,
		"time":        d.Time,
		"venue":       d.Venue,
		"address":     d.Address,
		"price":       d.Price,
		"url":         d.URL,
		"image_url":   d.ImageURL,
		"organizer":   d.Organizer,
		"tags":        d.Tags,
		"updated_at":  now,
	}
}

func (s *Store) Create(ctx context.Context, ev events.Event) (events.Event, error) {
	d := fromEvent(ev, time.Now().UTC())
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, d); err != nil {
		return events.Event{}, fmt.Errorf("mongo insert: %w", err)
	}
	return d.event(), nil
}

func (s *Store) FindByID(ctx context.Context, id string) (events.Event, error) {
	oid, err := objectID(id)
	if err != nil {
		return events.Event{}, err
	}
	var d document
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return events.Event{}, events.ErrNotFound
		}
		return events.Event{}, fmt.Errorf("mongo find one: %w", err)
	}
	return d.event(), nil
}

func (s *Store) Update(ctx context.Context, ev events.Event) error {
	oid, err := objectID(ev.ID)
	if err != nil {
		return err
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": updateFields(ev, time.Now().UTC())})
	if err != nil {
		return fmt.Errorf("mongo update: %w", err)
	}
	if res.MatchedCount == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return events.ErrNotFound
	}
	return nil
}
