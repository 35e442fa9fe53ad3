package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-maze/encoder"
	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ i.MazeRepo = &MazeRepo{}

// mazeRecord is the stored form of a maze: the encoder document plus bookkeeping.
type mazeRecord struct {
	ID                   string    `bson:"_id"`
	Owner                string    `bson:"owner"`
	UpdatedAt            time.Time `bson:"updatedAt"`
	encoder.MazeDocument `bson:",inline"`
}

// MazeRepo handles the persistence of mazes.
type MazeRepo struct {
	collection *mongo.Collection
	timeout    time.Duration
}

// NewMazeRepo creates a new MazeRepo with the given MongoDB client, database name, and collection name.
func NewMazeRepo(client *mongo.Client, dbName, collectionName string) *MazeRepo {
	collection := client.Database(dbName).Collection(collectionName)
	return &MazeRepo{
		collection: collection,
		timeout:    2 * time.Second,
	}
}

// Save inserts or replaces the maze stored under id.
func (r *MazeRepo) Save(ctx context.Context, id, owner uuid.UUID, m *maze.Maze) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	record := toRecord(id, owner, m, time.Now().UTC())
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": record.ID}, record, opts); err != nil {
		return fmt.Errorf("saving maze %s: %w", id, err)
	}
	return nil
}

// ByID retrieves a maze by its ID.
// Returns i.ErrMazeNotFound if nothing is stored under id, or an error
// wrapping maze.ErrCorruptMaze if the stored document does not describe
// a perfect maze.
func (r *MazeRepo) ByID(ctx context.Context, id uuid.UUID) (*maze.Maze, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var record mazeRecord
	if err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&record); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, i.ErrMazeNotFound
		}
		return nil, fmt.Errorf("loading maze %s: %w", id, err)
	}
	return fromRecord(record)
}

// Delete removes a maze saved by owner.
// Returns i.ErrMazeNotFound if owner has nothing stored under id.
func (r *MazeRepo) Delete(ctx context.Context, id, owner uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, ownedBy(id, owner))
	if err != nil {
		return fmt.Errorf("deleting maze %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return i.ErrMazeNotFound
	}
	return nil
}

func ownedBy(id, owner uuid.UUID) bson.M {
	return bson.M{"_id": id.String(), "owner": owner.String()}
}

func toRecord(id, owner uuid.UUID, m *maze.Maze, now time.Time) mazeRecord {
	return mazeRecord{
		ID:           id.String(),
		Owner:        owner.String(),
		UpdatedAt:    now,
		MazeDocument: encoder.ToDocument(m),
	}
}

func fromRecord(record mazeRecord) (*maze.Maze, error) {
	m, err := encoder.FromDocument(record.MazeDocument)
	if err != nil {
		return nil, fmt.Errorf("maze %s: %w", record.ID, err)
	}
	return m, nil
}
