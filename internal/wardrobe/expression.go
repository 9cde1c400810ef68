package wardrobe

import (
	"fmt"
	"regexp"
	"strings"

	"wardrobe/internal/apperr"
	"wardrobe/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Field names are interpolated into the update expression, so they are
// restricted to plain identifiers.
var fieldNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// buildItemUpdate renders the positional partial update for the item at
// index idx: one "Wardrobe[idx].field = :vN" clause per updated field. Only
// the named sub-fields of the matched element change; the rest of the
// sequence is untouched by the instruction. Fields are emitted in sorted
// order so the expression is deterministic.
func buildItemUpdate(idx int, updates models.ItemFields) (string, map[string]types.AttributeValue, error) {
	var expr strings.Builder
	expr.WriteString("SET ")

	values := make(map[string]types.AttributeValue, len(updates))
	for i, key := range updates.Keys() {
		if !fieldNameRe.MatchString(key) {
			return "", nil, apperr.New(apperr.Validation, fmt.Sprintf("%q is not a valid clothing field name", key))
		}

		if i > 0 {
			expr.WriteString(", ")
		}
		placeholder := fmt.Sprintf(":v%d", i)
		fmt.Fprintf(&expr, "Wardrobe[%d].%s = %s", idx, key, placeholder)

		av, err := marshalFieldValue(updates[key])
		if err != nil {
			return "", nil, apperr.ErrUpdateItem.WithCause(err)
		}
		values[placeholder] = av
	}

	return expr.String(), values, nil
}

// buildItemRemove renders the removal of the sequence element at idx.
func buildItemRemove(idx int) string {
	return fmt.Sprintf("REMOVE Wardrobe[%d]", idx)
}
