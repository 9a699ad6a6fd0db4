package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskflow/task-api/internal/core/domain"
	"github.com/taskflow/task-api/internal/core/ports"
)

const collectionTasks = "tasks"

// TaskRepository implements ports.TaskRepository using MongoDB.
type TaskRepository struct {
	col *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{col: db.Collection(collectionTasks)}
}

type taskDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	Status      string             `bson:"status"`
	Priority    string             `bson:"priority"`
	Category    string             `bson:"category"`
	DueDate     *time.Time         `bson:"dueDate,omitempty"`
	User        primitive.ObjectID `bson:"user"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d taskDocument) toDomain() *domain.Task {
	t := &domain.Task{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Status:      domain.TaskStatus(d.Status),
		Priority:    domain.TaskPriority(d.Priority),
		Category:    d.Category,
		Owner:       d.User.Hex(),
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	if d.DueDate != nil {
		due := d.DueDate.UTC()
		t.DueDate = &due
	}
	return t
}

// Create inserts a new task document and returns it with its generated id.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	owner, ok := parseID(t.Owner)
	if !ok {
		return nil, fmt.Errorf("insert task: invalid owner id %q", t.Owner)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := taskDocument{
		ID:          primitive.NewObjectID(),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Category:    t.Category,
		DueDate:     t.DueDate,
		User:        owner,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByID retrieves a task by id. Malformed ids are reported as not found.
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc taskDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns one page of the owner's tasks and the total number of matches.
func (r *TaskRepository) List(ctx context.Context, q ports.TaskQuery) ([]*domain.Task, int64, error) {
	owner, ok := parseID(q.Owner)
	if !ok {
		return []*domain.Task{}, 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := taskFilter(owner, q)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	opts := options.Find().
		SetSort(taskSort(q)).
		SetSkip(q.Skip()).
		SetLimit(int64(q.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find tasks: %w", err)
	}
	defer cur.Close(ctx)

	var docs []taskDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode tasks: %w", err)
	}

	tasks := make([]*domain.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.toDomain())
	}
	return tasks, total, nil
}

// Update writes the non-nil fields of changes and returns the stored result.
func (r *TaskRepository) Update(ctx context.Context, id string, changes ports.TaskChanges) (*domain.Task, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrTaskNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc taskDocument
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": taskSet(changes)},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	oid, ok := parseID(id)
	if !ok {
		return domain.ErrTaskNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// Stats counts the owner's tasks in a single aggregation pass.
func (r *TaskRepository) Stats(ctx context.Context, owner string) (*domain.TaskStats, error) {
	oid, ok := parseID(owner)
	if !ok {
		return &domain.TaskStats{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, statsPipeline(oid))
	if err != nil {
		return nil, fmt.Errorf("task stats: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		Total      int64 `bson:"total"`
		Pending    int64 `bson:"pending"`
		InProgress int64 `bson:"inProgress"`
		Completed  int64 `bson:"completed"`
		High       int64 `bson:"high"`
		Medium     int64 `bson:"medium"`
		Low        int64 `bson:"low"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode task stats: %w", err)
	}

	stats := &domain.TaskStats{}
	if len(rows) > 0 {
		row := rows[0]
		*stats = domain.TaskStats{
			Total:      row.Total,
			Pending:    row.Pending,
			InProgress: row.InProgress,
			Completed:  row.Completed,
			High:       row.High,
			Medium:     row.Medium,
			Low:        row.Low,
		}
	}
	return stats, nil
}

// EnsureIndexes creates the indexes used by listing and stats.
func (r *TaskRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "priority", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func taskSet(c ports.TaskChanges) bson.M {
	set := bson.M{"updatedAt": c.UpdatedAt}
	if c.Title != nil {
		set["title"] = *c.Title
	}
	if c.Description != nil {
		set["description"] = *c.Description
	}
	if c.Status != nil {
		set["status"] = string(*c.Status)
	}
	if c.Priority != nil {
		set["priority"] = string(*c.Priority)
	}
	if c.Category != nil {
		set["category"] = *c.Category
	}
	if c.DueDate != nil {
		set["dueDate"] = c.DueDate.UTC()
	}
	return set
}

func statsPipeline(owner primitive.ObjectID) mongo.Pipeline {
	countIf := func(field, value string) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{
			bson.M{"$eq": bson.A{"$" + field, value}}, 1, 0,
		}}}
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user": owner}}},
		{{Key: "$group", Value: bson.M{
			"_id":        nil,
			"total":      bson.M{"$sum": 1},
			"pending":    countIf("status", string(domain.StatusPending)),
			"inProgress": countIf("status", string(domain.StatusInProgress)),
			"completed":  countIf("status", string(domain.StatusCompleted)),
			"high":       countIf("priority", string(domain.PriorityHigh)),
			"medium":     countIf("priority", string(domain.PriorityMedium)),
			"low":        countIf("priority", string(domain.PriorityLow)),
		}}},
	}
}
