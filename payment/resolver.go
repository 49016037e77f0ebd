package payment

import (
	"fmt"

	"github.com/avisharm-alt/curesite/model"
)

// TargetResolver maps a transaction's target type onto the content
// collection it pays for. A closed table, not an if/else chain: adding a
// payable content kind is a table addition. Unrecognized tags fail loudly
// instead of defaulting to a collection, so a missing or corrupted type
// tag can never route a completion into the wrong collection.
type TargetResolver struct {
	collections map[model.TargetType]ContentCollection
}

func NewTargetResolver(posters, articles ContentCollection) *TargetResolver {
	return &TargetResolver{
		collections: map[model.TargetType]ContentCollection{
			model.TargetPoster:  posters,
			model.TargetArticle: articles,
		},
	}
}

func (r *TargetResolver) Resolve(targetType model.TargetType) (ContentCollection, error) {
	col, ok := r.collections[targetType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTargetType, targetType)
	}
	return col, nil
}
