package wardrobe

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"wardrobe/internal/apperr"
	"wardrobe/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo keeps one record per user key and applies SET/REMOVE update
// expressions the way the real table would, so the store's positional
// update semantics are exercised end to end.
type fakeDynamo struct {
	records map[string]map[string]types.AttributeValue
	err     error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{records: make(map[string]map[string]types.AttributeValue)}
}

func recordKey(key map[string]types.AttributeValue) string {
	n := key[attrUserID].(*types.AttributeValueMemberN)
	return n.Value
}

func (f *fakeDynamo) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	record, ok := f.records[recordKey(params.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: record}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.records[recordKey(params.Item)] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

var (
	setClauseRe = regexp.MustCompile(`^Wardrobe\[(\d+)\]\.([A-Za-z0-9_]+) = (:v\d+)$`)
	removeRe    = regexp.MustCompile(`^REMOVE Wardrobe\[(\d+)\]$`)
)

func (f *fakeDynamo) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}

	record, ok := f.records[recordKey(params.Key)]
	if !ok {
		return nil, errors.New("record not found")
	}
	list := record[attrWardrobe].(*types.AttributeValueMemberL)

	old := make([]types.AttributeValue, len(list.Value))
	copy(old, list.Value)

	expr := *params.UpdateExpression
	switch {
	case strings.HasPrefix(expr, "SET "):
		for _, clause := range strings.Split(strings.TrimPrefix(expr, "SET "), ", ") {
			m := setClauseRe.FindStringSubmatch(clause)
			if m == nil {
				return nil, errors.New("unparseable clause: " + clause)
			}
			idx, _ := strconv.Atoi(m[1])
			if idx >= len(list.Value) {
				return nil, errors.New("index out of range")
			}
			elem := list.Value[idx].(*types.AttributeValueMemberM)
			value, ok := params.ExpressionAttributeValues[m[3]]
			if !ok {
				return nil, errors.New("missing placeholder " + m[3])
			}
			elem.Value[m[2]] = value
		}
	case removeRe.MatchString(expr):
		m := removeRe.FindStringSubmatch(expr)
		idx, _ := strconv.Atoi(m[1])
		if idx >= len(list.Value) {
			return nil, errors.New("index out of range")
		}
		list.Value = append(list.Value[:idx], list.Value[idx+1:]...)
		record[attrWardrobe] = list
	default:
		return nil, errors.New("unparseable expression: " + expr)
	}

	out := &dynamodb.UpdateItemOutput{}
	switch params.ReturnValues {
	case types.ReturnValueAllOld:
		out.Attributes = map[string]types.AttributeValue{
			attrUserID:   record[attrUserID],
			attrWardrobe: &types.AttributeValueMemberL{Value: old},
		}
	case types.ReturnValueAllNew:
		out.Attributes = record
	}
	return out, nil
}

func setupStore() (*Store, *fakeDynamo) {
	fake := newFakeDynamo()
	return NewStore(fake, "User_Clothing"), fake
}

func TestGetWardrobeMissingUser(t *testing.T) {
	store, _ := setupStore()

	w, err := store.GetWardrobe(context.Background(), 7)
	if err != nil {
		t.Fatal("A missing record should not be an error:", err)
	}

	if w.Exists {
		t.Error("Expected Exists false for a user with no record")
	}
	if len(w.Items) != 0 {
		t.Errorf("Expected empty wardrobe, got %d items", len(w.Items))
	}

	if _, err := store.GetWardrobe(context.Background(), 0); err == nil {
		t.Error("Expected invalid user id to be rejected")
	}
}

func TestAddItemAssignsFreshID(t *testing.T) {
	store, _ := setupStore()
	ctx := context.Background()

	first, err := store.AddItem(ctx, 7, models.ItemFields{"category": models.StringValue("Hat")})
	if err != nil {
		t.Fatal("Failed to add item:", err)
	}

	if first.ID == "" {
		t.Error("Expected a generated item id")
	}

	second, err := store.AddItem(ctx, 7, models.ItemFields{"category": models.StringValue("Scarf")})
	if err != nil {
		t.Fatal("Failed to add second item:", err)
	}

	if second.ID == first.ID {
		t.Error("Each added item should get a fresh id")
	}

	w, err := store.GetWardrobe(ctx, 7)
	if err != nil {
		t.Fatal("Failed to get wardrobe:", err)
	}

	if !w.Exists {
		t.Error("Expected Exists true after adding items")
	}
	if len(w.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(w.Items))
	}
	if w.Items[0].Fields["category"].Str != "Hat" {
		t.Errorf("Expected first item 'Hat', got %v", w.Items[0].Fields["category"])
	}

	if _, err := store.AddItem(ctx, 7, models.ItemFields{}); err == nil {
		t.Error("Expected empty fields to be rejected")
	}
}

func TestUpdateItemPatchesOnlyNamedFields(t *testing.T) {
	store, _ := setupStore()
	ctx := context.Background()

	item, err := store.AddItem(ctx, 7, models.ItemFields{
		"category": models.StringValue("Hat"),
		"color":    models.StringValue("red"),
	})
	if err != nil {
		t.Fatal("Failed to add item:", err)
	}

	updated, err := store.UpdateItem(ctx, 7, item.ID, models.ItemFields{
		"color": models.StringValue("blue"),
	})
	if err != nil {
		t.Fatal("Failed to update item:", err)
	}

	if updated.ID != item.ID {
		t.Errorf("Update should keep the item id, got %s", updated.ID)
	}
	if updated.Fields["color"].Str != "blue" {
		t.Errorf("Expected color 'blue', got %v", updated.Fields["color"])
	}
	if updated.Fields["category"].Str != "Hat" {
		t.Errorf("Unnamed field should be untouched, got %v", updated.Fields["category"])
	}

	// Writing the same value again changes nothing further.
	again, err := store.UpdateItem(ctx, 7, item.ID, models.ItemFields{
		"color": models.StringValue("blue"),
	})
	if err != nil {
		t.Fatal("Failed to repeat update:", err)
	}
	if again.Fields["color"].Str != "blue" || again.Fields["category"].Str != "Hat" {
		t.Errorf("Repeated update changed the item: %+v", again.Fields)
	}
}

func TestUpdateItemUnknownID(t *testing.T) {
	store, _ := setupStore()
	ctx := context.Background()

	item, err := store.AddItem(ctx, 7, models.ItemFields{"category": models.StringValue("Hat")})
	if err != nil {
		t.Fatal("Failed to add item:", err)
	}

	_, err = store.UpdateItem(ctx, 7, "no-such-id", models.ItemFields{
		"color": models.StringValue("blue"),
	})
	if !errors.Is(err, apperr.ErrNoItemFound) {
		t.Errorf("Expected no item found error, got %v", err)
	}

	w, err := store.GetWardrobe(ctx, 7)
	if err != nil {
		t.Fatal("Failed to get wardrobe:", err)
	}
	if len(w.Items) != 1 || w.Items[0].ID != item.ID {
		t.Error("A failed update should leave the wardrobe unchanged")
	}
}

func TestDeleteItemReturnsRemoved(t *testing.T) {
	store, _ := setupStore()
	ctx := context.Background()

	hat, err := store.AddItem(ctx, 7, models.ItemFields{"category": models.StringValue("Hat")})
	if err != nil {
		t.Fatal("Failed to add item:", err)
	}
	scarf, err := store.AddItem(ctx, 7, models.ItemFields{"category": models.StringValue("Scarf")})
	if err != nil {
		t.Fatal("Failed to add item:", err)
	}

	removed, err := store.DeleteItem(ctx, 7, hat.ID)
	if err != nil {
		t.Fatal("Failed to delete item:", err)
	}

	if removed.ID != hat.ID {
		t.Errorf("Expected removed item %s, got %s", hat.ID, removed.ID)
	}
	if removed.Fields["category"].Str != "Hat" {
		t.Errorf("Expected removed item 'Hat', got %v", removed.Fields["category"])
	}

	w, err := store.GetWardrobe(ctx, 7)
	if err != nil {
		t.Fatal("Failed to get wardrobe:", err)
	}
	if len(w.Items) != 1 || w.Items[0].ID != scarf.ID {
		t.Errorf("Expected only the scarf to remain, got %+v", w.Items)
	}

	_, err = store.DeleteItem(ctx, 7, hat.ID)
	if !errors.Is(err, apperr.ErrNoItemFound) {
		t.Errorf("Expected no item found error on second delete, got %v", err)
	}
}

func TestStoreSurfacesBackendFailure(t *testing.T) {
	store, fake := setupStore()
	ctx := context.Background()

	if _, err := store.AddItem(ctx, 7, models.ItemFields{"category": models.StringValue("Hat")}); err != nil {
		t.Fatal("Failed to add item:", err)
	}

	fake.err = errors.New("throughput exceeded")

	_, err := store.GetWardrobe(ctx, 7)
	if !errors.Is(err, apperr.ErrGetWardrobe) {
		t.Errorf("Expected wardrobe retrieval error, got %v", err)
	}

	_, err = store.AddItem(ctx, 7, models.ItemFields{"category": models.StringValue("Scarf")})
	if apperr.From(err).Kind != apperr.Server {
		t.Errorf("Expected server error, got %v", err)
	}
}
