package diffmap

import "go.mongodb.org/mongo-driver/bson"

// BSON returns u as an update document suitable for the MongoDB driver,
// e.g. collection.UpdateOne(ctx, filter, u.BSON()). Bucket order is kept.
func (u *Update) BSON() bson.D {
	update := bson.D{}
	if u == nil {
		return update
	}
	if u.Set.Len() > 0 {
		update = append(update, bson.E{Key: OpSet, Value: u.Set.bson()})
	}
	if u.Unset.Len() > 0 {
		update = append(update, bson.E{Key: OpUnset, Value: u.Unset.bson()})
	}
	return update
}

func (b *Bucket) bson() bson.D {
	fields := make(bson.D, 0, b.Len())
	b.Range(func(path string, value any) bool {
		fields = append(fields, bson.E{Key: path, Value: value})
		return true
	})
	return fields
}
