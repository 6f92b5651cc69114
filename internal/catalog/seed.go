package catalog

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

// Mongo collection names.
const (
	ClientsCollection = "clients"
	MovesCollection   = "moves"
)

var (
	_cities       = []string{"Moscow", "Kazan", "Sochi", "Perm", "Tver", "Omsk", "Samara"}
	_statuses     = []string{"active", "inactive", "lead"}
	_moveStatuses = []string{"planned", "in_progress", "done", "canceled"}
	_firstNames   = []string{"Anna", "Boris", "Vera", "Gleb", "Daria", "Egor", "Zoya", "Ilya"}
	_lastNames    = []string{"Ivanova", "Petrov", "Sidorova", "Smirnov", "Kuznetsova", "Popov"}
)

// Generate returns n clients and up to three moves per client. The same seed
// always yields the same data.
func Generate(n int, seed uint64) ([]Client, []Move) {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	newID := func() uuid.UUID {
		var id uuid.UUID
		for i := range id {
			id[i] = byte(r.UintN(256))
		}
		// RFC 4122 version 4 layout.
		id[6] = (id[6] & 0x0f) | 0x40
		id[8] = (id[8] & 0x3f) | 0x80
		return id
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	managers := lo.Times(4, func(int) uuid.UUID { return newID() })

	clients := make([]Client, 0, n)
	moves := make([]Move, 0, n*2)
	for i := 0; i < n; i++ {
		first, last := _firstNames[r.IntN(len(_firstNames))], _lastNames[r.IntN(len(_lastNames))]
		client := Client{
			ID:        newID(),
			Name:      fmt.Sprintf("%s %s", first, last),
			Email:     fmt.Sprintf("%s.%s.%d@example.com", first, last, i),
			Status:    _statuses[r.IntN(len(_statuses))],
			City:      _cities[r.IntN(len(_cities))],
			ManagerID: managers[r.IntN(len(managers))],
			Balance:   float64(r.IntN(1_000_000)) / 100,
			// Several clients share a timestamp so the tie-breaker matters.
			CreatedAt: base.Add(time.Duration(i/3) * time.Hour),
		}
		clients = append(clients, client)

		for j := 0; j < r.IntN(4); j++ {
			moves = append(moves, Move{
				ID:          newID(),
				ClientID:    client.ID,
				Origin:      client.City,
				Destination: _cities[r.IntN(len(_cities))],
				Status:      _moveStatuses[r.IntN(len(_moveStatuses))],
				Volume:      float64(r.IntN(400)) / 4,
				Crew:        1 + r.IntN(5),
				ScheduledAt: client.CreatedAt.Add(time.Duration(24*(j+1)) * time.Hour),
				CreatedAt:   client.CreatedAt,
			})
		}
	}

	return clients, moves
}

// SeedGORM migrates the tables and inserts the records.
func SeedGORM(ctx context.Context, db *gorm.DB, clients []Client, moves []Move) error {
	db = db.WithContext(ctx)

	if err := db.AutoMigrate(&Client{}, &Move{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if len(clients) > 0 {
		if err := db.CreateInBatches(clients, 100).Error; err != nil {
			return fmt.Errorf("insert clients: %w", err)
		}
	}
	if len(moves) > 0 {
		if err := db.CreateInBatches(moves, 100).Error; err != nil {
			return fmt.Errorf("insert moves: %w", err)
		}
	}

	return nil
}

// SeedMongo replaces the contents of both collections and creates the
// indexes the default orderings use.
func SeedMongo(ctx context.Context, database *mongo.Database, clients []Client, moves []Move) error {
	if err := seedCollection(ctx, database.Collection(ClientsCollection), clients, "created_at"); err != nil {
		return fmt.Errorf("seed clients: %w", err)
	}
	if err := seedCollection(ctx, database.Collection(MovesCollection), moves, "scheduled_at"); err != nil {
		return fmt.Errorf("seed moves: %w", err)
	}

	return nil
}

func seedCollection[T any](ctx context.Context, coll *mongo.Collection, docs []T, sortField string) error {
	if err := coll.Drop(ctx); err != nil {
		return err
	}

	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: sortField, Value: -1}, {Key: IDColumnMongo, Value: -1}},
		Options: options.Index().SetName(sortField + "_id"),
	})
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		return nil
	}

	_, err = coll.InsertMany(ctx, lo.ToAnySlice(docs))
	return err
}
