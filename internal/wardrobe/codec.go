package wardrobe

import (
	"fmt"

	"wardrobe/internal/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Stored shape: one record per user, keyed by User_Id, with the whole item
// sequence under the Wardrobe list attribute. Each element is a map holding
// the generated ID next to the free-form fields.

func marshalFieldValue(v models.FieldValue) (types.AttributeValue, error) {
	return attributevalue.Marshal(v.Value())
}

func unmarshalFieldValue(av types.AttributeValue) (models.FieldValue, error) {
	var raw interface{}
	if err := attributevalue.Unmarshal(av, &raw); err != nil {
		return models.FieldValue{}, err
	}
	return models.FieldValueOf(raw)
}

func marshalItem(item models.ClothingItem) (types.AttributeValue, error) {
	attrs := make(map[string]types.AttributeValue, len(item.Fields)+1)
	for key, value := range item.Fields {
		av, err := marshalFieldValue(value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		attrs[key] = av
	}
	attrs["ID"] = &types.AttributeValueMemberS{Value: item.ID}
	return &types.AttributeValueMemberM{Value: attrs}, nil
}

func unmarshalItem(av types.AttributeValue) (models.ClothingItem, error) {
	m, ok := av.(*types.AttributeValueMemberM)
	if !ok {
		return models.ClothingItem{}, fmt.Errorf("clothing item is not a map attribute")
	}

	item := models.ClothingItem{Fields: make(models.ItemFields, len(m.Value))}
	for key, attr := range m.Value {
		if key == "ID" {
			s, ok := attr.(*types.AttributeValueMemberS)
			if !ok {
				return models.ClothingItem{}, fmt.Errorf("item ID is not a string attribute")
			}
			item.ID = s.Value
			continue
		}
		value, err := unmarshalFieldValue(attr)
		if err != nil {
			return models.ClothingItem{}, fmt.Errorf("field %q: %w", key, err)
		}
		item.Fields[key] = value
	}

	return item, nil
}

func marshalItems(items []models.ClothingItem) (types.AttributeValue, error) {
	list := make([]types.AttributeValue, 0, len(items))
	for _, item := range items {
		av, err := marshalItem(item)
		if err != nil {
			return nil, err
		}
		list = append(list, av)
	}
	return &types.AttributeValueMemberL{Value: list}, nil
}

func unmarshalItems(av types.AttributeValue) ([]models.ClothingItem, error) {
	l, ok := av.(*types.AttributeValueMemberL)
	if !ok {
		return nil, fmt.Errorf("wardrobe is not a list attribute")
	}

	items := make([]models.ClothingItem, 0, len(l.Value))
	for _, elem := range l.Value {
		item, err := unmarshalItem(elem)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
