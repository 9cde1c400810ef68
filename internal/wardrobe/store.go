package wardrobe

import (
	"context"
	"strconv"

	"wardrobe/internal/apperr"
	"wardrobe/internal/logger"
	"wardrobe/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

const (
	attrUserID   = "User_Id"
	attrWardrobe = "Wardrobe"
)

// DynamoAPI is the slice of the DynamoDB client the store uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// Store holds each user's wardrobe as a single record containing the entire
// item sequence. Adds rewrite the whole list; updates and deletes address
// one element by its position, found by scanning the sequence for the item
// id. The read-then-index-then-write cycle is not atomic against other
// writers of the same record.
type Store struct {
	client DynamoAPI
	table  string
}

func NewStore(client DynamoAPI, table string) *Store {
	return &Store{client: client, table: table}
}

func (s *Store) key(userID int) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrUserID: &types.AttributeValueMemberN{Value: strconv.Itoa(userID)},
	}
}

// GetWardrobe returns the user's wardrobe. A user with no stored record gets
// an empty wardrobe with Exists false; that is a valid state, not an error.
func (s *Store) GetWardrobe(ctx context.Context, userID int) (*models.Wardrobe, error) {
	if userID <= 0 {
		return nil, apperr.Undefined("UserId")
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       s.key(userID),
	})
	if err != nil {
		return nil, apperr.ErrGetWardrobe.WithCause(err)
	}

	if len(out.Item) == 0 {
		return &models.Wardrobe{UserID: userID, Items: []models.ClothingItem{}}, nil
	}

	wardrobe := &models.Wardrobe{UserID: userID, Items: []models.ClothingItem{}, Exists: true}
	if av, ok := out.Item[attrWardrobe]; ok {
		items, err := unmarshalItems(av)
		if err != nil {
			return nil, apperr.ErrGetWardrobe.WithCause(err)
		}
		wardrobe.Items = items
	}

	return wardrobe, nil
}

// AddItem assigns the fields a fresh identifier, appends the item to the
// sequence, and persists the whole sequence back under the user's key.
func (s *Store) AddItem(ctx context.Context, userID int, fields models.ItemFields) (*models.ClothingItem, error) {
	if userID <= 0 || len(fields) == 0 {
		return nil, apperr.Undefined("UserId and clothing fields")
	}

	wardrobe, err := s.GetWardrobe(ctx, userID)
	if err != nil {
		return nil, err
	}

	item := models.ClothingItem{ID: uuid.New().String(), Fields: fields}
	items, err := marshalItems(append(wardrobe.Items, item))
	if err != nil {
		return nil, apperr.ErrAddItem.WithCause(err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]types.AttributeValue{
			attrUserID:   s.key(userID)[attrUserID],
			attrWardrobe: items,
		},
	})
	if err != nil {
		return nil, apperr.ErrAddItem.WithCause(err)
	}

	logger.Info("Clothing item added", "user_id", userID, "item_id", item.ID)
	return &item, nil
}

// UpdateItem patches the named fields of the item matching itemID and
// returns the updated item. Only the named sub-fields of the matched element
// are part of the instruction.
func (s *Store) UpdateItem(ctx context.Context, userID int, itemID string, updates models.ItemFields) (*models.ClothingItem, error) {
	if userID <= 0 || itemID == "" || len(updates) == 0 {
		return nil, apperr.Undefined("UserId, clothingId, and updates")
	}

	wardrobe, err := s.GetWardrobe(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := findItem(wardrobe.Items, itemID)
	if idx < 0 {
		return nil, apperr.ErrNoItemFound
	}

	expr, values, err := buildItemUpdate(idx, updates)
	if err != nil {
		return nil, err
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       s.key(userID),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, apperr.ErrUpdateItem.WithCause(err)
	}

	updated, err := unmarshalItems(out.Attributes[attrWardrobe])
	if err != nil || idx >= len(updated) {
		return nil, apperr.ErrUpdateItem.WithCause(err)
	}

	logger.Info("Clothing item updated", "user_id", userID, "item_id", itemID)
	return &updated[idx], nil
}

// DeleteItem removes the item matching itemID from the sequence and returns
// the removed item.
func (s *Store) DeleteItem(ctx context.Context, userID int, itemID string) (*models.ClothingItem, error) {
	if userID <= 0 || itemID == "" {
		return nil, apperr.Undefined("UserId and clothingId")
	}

	wardrobe, err := s.GetWardrobe(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := findItem(wardrobe.Items, itemID)
	if idx < 0 {
		return nil, apperr.ErrNoItemFound
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(s.table),
		Key:              s.key(userID),
		UpdateExpression: aws.String(buildItemRemove(idx)),
		ReturnValues:     types.ReturnValueAllOld,
	})
	if err != nil {
		return nil, apperr.ErrDeleteItem.WithCause(err)
	}

	old, err := unmarshalItems(out.Attributes[attrWardrobe])
	if err != nil || idx >= len(old) {
		return nil, apperr.ErrDeleteItem.WithCause(err)
	}

	logger.Info("Clothing item deleted", "user_id", userID, "item_id", itemID)
	return &old[idx], nil
}

// findItem scans the sequence for the first item whose ID matches exactly.
func findItem(items []models.ClothingItem, itemID string) int {
	for i, item := range items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}
