// Package catalog holds the demo domain: clients and their moves, the list
// endpoints declared over them and a deterministic data generator.
package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/Alp4ka/pager"
)

// Identifier column names per store.
const (
	IDColumnSQL   = "id"
	IDColumnMongo = "_id"
)

type Client struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Status    string    `json:"status" gorm:"index" bson:"status"`
	City      string    `json:"city" bson:"city"`
	ManagerID uuid.UUID `json:"managerId" bson:"manager_id"`
	Balance   float64   `json:"balance" bson:"balance"`
	CreatedAt time.Time `json:"createdAt" gorm:"index" bson:"created_at"`
}

type Move struct {
	ID          uuid.UUID `json:"id" gorm:"primaryKey" bson:"_id"`
	ClientID    uuid.UUID `json:"clientId" gorm:"index" bson:"client_id"`
	Origin      string    `json:"origin" bson:"origin"`
	Destination string    `json:"destination" bson:"destination"`
	Status      string    `json:"status" bson:"status"`
	Volume      float64   `json:"volume" bson:"volume"`
	Crew        int       `json:"crew" bson:"crew"`
	ScheduledAt time.Time `json:"scheduledAt" gorm:"index" bson:"scheduled_at"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
}

// ClientEndpoint declares GET /clients. idColumn is IDColumnSQL or
// IDColumnMongo. Getters cover the filter columns too so the endpoint also
// runs over memexec.
func ClientEndpoint(idColumn string, maxLimit int) *pager.Endpoint[Client] {
	return &pager.Endpoint[Client]{
		Filters: pager.FilterFields{
			"status":    {Type: pager.FieldExact},
			"managerId": {Column: "manager_id", Type: pager.FieldExact, Kind: pager.KindUUID},
			"name":      {Type: pager.FieldRegex},
			"city":      {Type: pager.FieldSet},
			"balance":   {Type: pager.FieldRange, Kind: pager.KindFloat},
			"createdAt": {Column: "created_at", Type: pager.FieldDateRange},
			"q":         {Type: pager.FieldSearch, Columns: []string{"name", "email", "city"}},
		},
		Sort: pager.SortRules{
			Columns: pager.ColumnMapping{
				"name":      "name",
				"city":      "city",
				"balance":   "balance",
				"createdAt": "created_at",
				"id":        idColumn,
			},
			Kinds: map[pager.ColumnAlias]pager.ValueKind{
				"name":      pager.KindString,
				"city":      pager.KindString,
				"balance":   pager.KindFloat,
				"createdAt": pager.KindTime,
				"id":        pager.KindUUID,
			},
			TieBreaker:       "id",
			DefaultDirection: pager.DirectionDESC,
		},
		Getters: pager.Getters[Client]{
			idColumn:     func(c Client) any { return c.ID },
			"name":       func(c Client) any { return c.Name },
			"email":      func(c Client) any { return c.Email },
			"status":     func(c Client) any { return c.Status },
			"city":       func(c Client) any { return c.City },
			"manager_id": func(c Client) any { return c.ManagerID },
			"balance":    func(c Client) any { return c.Balance },
			"created_at": func(c Client) any { return c.CreatedAt },
		},
		MaxLimit: maxLimit,
		Mode:     pager.ModeAuto,
	}
}

// MoveEndpoint declares GET /moves. Moves are mostly read as an infinite
// schedule feed, so keyset paging is the default.
func MoveEndpoint(idColumn string, maxLimit int) *pager.Endpoint[Move] {
	return &pager.Endpoint[Move]{
		Filters: pager.FilterFields{
			"clientId":    {Column: "client_id", Type: pager.FieldExact, Kind: pager.KindUUID},
			"status":      {Type: pager.FieldSet},
			"origin":      {Type: pager.FieldRegex},
			"destination": {Type: pager.FieldRegex},
			"volume":      {Type: pager.FieldRange, Kind: pager.KindFloat},
			"crew":        {Type: pager.FieldSet, Kind: pager.KindInt},
			"scheduledAt": {Column: "scheduled_at", Type: pager.FieldDateRange},
		},
		Sort: pager.SortRules{
			Columns: pager.ColumnMapping{
				"scheduledAt": "scheduled_at",
				"createdAt":   "created_at",
				"volume":      "volume",
				"id":          idColumn,
			},
			Kinds: map[pager.ColumnAlias]pager.ValueKind{
				"scheduledAt": pager.KindTime,
				"createdAt":   pager.KindTime,
				"volume":      pager.KindFloat,
				"id":          pager.KindUUID,
			},
			TieBreaker:       "id",
			DefaultDirection: pager.DirectionASC,
		},
		Getters: pager.Getters[Move]{
			idColumn:       func(m Move) any { return m.ID },
			"client_id":    func(m Move) any { return m.ClientID },
			"status":       func(m Move) any { return m.Status },
			"origin":       func(m Move) any { return m.Origin },
			"destination":  func(m Move) any { return m.Destination },
			"volume":       func(m Move) any { return m.Volume },
			"crew":         func(m Move) any { return m.Crew },
			"scheduled_at": func(m Move) any { return m.ScheduledAt },
			"created_at":   func(m Move) any { return m.CreatedAt },
		},
		MaxLimit: maxLimit,
		Mode:     pager.ModeCursor,
	}
}
