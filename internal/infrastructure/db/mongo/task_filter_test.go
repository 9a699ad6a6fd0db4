package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskflow/task-api/internal/core/domain"
	"github.com/taskflow/task-api/internal/core/ports"
)

func TestTaskFilter_OwnerOnly(t *testing.T) {
	owner := primitive.NewObjectID()
	f := taskFilter(owner, ports.TaskQuery{})

	if len(f) != 1 {
		t.Fatalf("expected only the owner clause, got %v", f)
	}
	if f["user"] != owner {
		t.Fatalf("expected user=%s, got %v", owner.Hex(), f["user"])
	}
}

func TestTaskFilter_AllClauses(t *testing.T) {
	owner := primitive.NewObjectID()
	f := taskFilter(owner, ports.TaskQuery{
		Status:   domain.StatusInProgress,
		Priority: domain.PriorityHigh,
		Category: "Work",
		Search:   "report",
	})

	if f["status"] != "in-progress" {
		t.Errorf("status = %v", f["status"])
	}
	if f["priority"] != "high" {
		t.Errorf("priority = %v", f["priority"])
	}
	re, ok := f["category"].(primitive.Regex)
	if !ok || re.Pattern != "Work" || re.Options != "i" {
		t.Errorf("category = %#v", f["category"])
	}
	or, ok := f["$or"].(bson.A)
	if !ok || len(or) != 2 {
		t.Fatalf("$or = %#v", f["$or"])
	}
}

func TestTaskFilter_EscapesPatternCharacters(t *testing.T) {
	f := taskFilter(primitive.NewObjectID(), ports.TaskQuery{Search: "a.b*(c"})

	or := f["$or"].(bson.A)
	title := or[0].(bson.M)["title"].(primitive.Regex)
	if title.Pattern != `a\.b\*\(c` {
		t.Fatalf("expected escaped pattern, got %q", title.Pattern)
	}
}

func TestTaskSort(t *testing.T) {
	tests := []struct {
		name string
		q    ports.TaskQuery
		want bson.D
	}{
		{
			name: "descending created",
			q:    ports.TaskQuery{SortField: ports.SortCreatedAt, Descending: true},
			want: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
		},
		{
			name: "ascending title",
			q:    ports.TaskQuery{SortField: ports.SortTitle},
			want: bson.D{{Key: "title", Value: 1}, {Key: "_id", Value: 1}},
		},
		{
			name: "empty field falls back to createdAt",
			q:    ports.TaskQuery{Descending: true},
			want: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := taskSort(tt.q)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestTaskSet_OnlyProvidedFields(t *testing.T) {
	status := domain.StatusCompleted
	set := taskSet(ports.TaskChanges{Status: &status})

	if len(set) != 2 {
		t.Fatalf("expected status and updatedAt only, got %v", set)
	}
	if set["status"] != "completed" {
		t.Fatalf("status = %v", set["status"])
	}
}

func TestParseID(t *testing.T) {
	if _, ok := parseID("not-an-id"); ok {
		t.Fatal("expected malformed id to be rejected")
	}
	oid := primitive.NewObjectID()
	got, ok := parseID(oid.Hex())
	if !ok || got != oid {
		t.Fatalf("parseID(%s) = %v, %v", oid.Hex(), got, ok)
	}
}
