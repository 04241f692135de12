package cart

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// EncodeItems serializes items as a JSON array of
// {"id","title","price","image","quantity"} objects.
func EncodeItems(items []Item) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, it := range items {
		e.ObjStart()
		e.FieldStart("id")
		e.Int64(it.ID)
		e.FieldStart("title")
		e.Str(it.Title)
		e.FieldStart("price")
		e.Num(jx.Num(it.Price.String()))
		e.FieldStart("image")
		e.Str(it.Image)
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}

// DecodeItems parses the output of EncodeItems. A JSON null decodes to an
// empty sequence. Items violating the cart invariants (non-positive quantity,
// duplicate id) are rejected.
func DecodeItems(data []byte) ([]Item, error) {
	d := jx.DecodeBytes(data)
	if d.Next() == jx.Null {
		return nil, d.Null()
	}

	var items []Item
	seen := make(map[int64]struct{})
	if err := d.Arr(func(d *jx.Decoder) error {
		it, err := decodeItem(d)
		if err != nil {
			return err
		}
		if it.Quantity < 1 {
			return errors.Errorf("item %d: invalid quantity %d", it.ID, it.Quantity)
		}
		if _, ok := seen[it.ID]; ok {
			return errors.Errorf("item %d: duplicate", it.ID)
		}
		seen[it.ID] = struct{}{}
		items = append(items, it)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode cart items")
	}
	return items, nil
}

func decodeItem(d *jx.Decoder) (Item, error) {
	var it Item
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			v, err := d.Int64()
			it.ID = v
			return err
		case "title":
			v, err := d.Str()
			it.Title = v
			return err
		case "price":
			n, err := d.Num()
			if err != nil {
				return err
			}
			p, err := decimal.NewFromString(n.String())
			if err != nil {
				return errors.Wrap(err, "price")
			}
			it.Price = p
			return nil
		case "image":
			v, err := d.Str()
			it.Image = v
			return err
		case "quantity":
			v, err := d.Int()
			it.Quantity = v
			return err
		default:
			return d.Skip()
		}
	})
	return it, err
}
