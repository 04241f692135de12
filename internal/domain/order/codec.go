package order

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// EncodeItems serializes order lines as a JSON array.
func EncodeItems(items []Item) []byte {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	writeItems(e, items)
	return append([]byte(nil), e.Bytes()...)
}

// DecodeItems parses the output of EncodeItems.
func DecodeItems(data []byte) ([]Item, error) {
	items, err := readItems(jx.DecodeBytes(data))
	if err != nil {
		return nil, errors.Wrap(err, "decode order items")
	}
	return items, nil
}

// Encode serializes a whole order as a JSON object.
func Encode(o *Order) []byte {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("items")
	writeItems(e, o.Items)
	e.FieldStart("total")
	e.Num(jx.Num(o.Total.String()))
	e.FieldStart("createdAt")
	e.Str(o.CreatedAt.UTC().Format(time.RFC3339Nano))
	e.ObjEnd()
	return append([]byte(nil), e.Bytes()...)
}

// Decode parses the output of Encode.
func Decode(data []byte) (*Order, error) {
	var o Order
	err := jx.DecodeBytes(data).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			o.ID, err = d.Str()
		case "items":
			o.Items, err = readItems(d)
		case "total":
			o.Total, err = readDecimal(d)
		case "createdAt":
			var s string
			if s, err = d.Str(); err == nil {
				o.CreatedAt, err = time.Parse(time.RFC3339Nano, s)
			}
		default:
			err = d.Skip()
		}
		return errors.Wrap(err, key)
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode order")
	}
	return &o, nil
}

func writeItems(e *jx.Encoder, items []Item) {
	e.ArrStart()
	for _, it := range items {
		e.ObjStart()
		e.FieldStart("productId")
		e.Int64(it.ProductID)
		e.FieldStart("title")
		e.Str(it.Title)
		e.FieldStart("price")
		e.Num(jx.Num(it.Price.String()))
		e.FieldStart("quantity")
		e.Int(it.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
}

func readItems(d *jx.Decoder) ([]Item, error) {
	items := make([]Item, 0, 4)
	err := d.Arr(func(d *jx.Decoder) error {
		var it Item
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "productId":
				it.ProductID, err = d.Int64()
			case "title":
				it.Title, err = d.Str()
			case "price":
				it.Price, err = readDecimal(d)
			case "quantity":
				it.Quantity, err = d.Int()
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		items = append(items, it)
		return nil
	})
	return items, err
}

func readDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	n, err := d.Num()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(n.String())
}
