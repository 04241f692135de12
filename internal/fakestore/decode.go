package fakestore

import (
	"bytes"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/product"
)

func decodeProducts(data []byte) ([]product.Product, error) {
	d := jx.DecodeBytes(data)
	products := make([]product.Product, 0, 32)
	if err := d.Arr(func(d *jx.Decoder) error {
		p, err := decodeProduct(d)
		if err != nil {
			return err
		}
		products = append(products, p)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode products")
	}
	return products, nil
}

// decodeProductBody decodes a single product, mapping an empty or null body
// to product.ErrNotFound.
func decodeProductBody(data []byte) (*product.Product, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, product.ErrNotFound
	}
	d := jx.DecodeBytes(data)
	if d.Next() == jx.Null {
		return nil, product.ErrNotFound
	}
	p, err := decodeProduct(d)
	if err != nil {
		return nil, errors.Wrap(err, "decode product")
	}
	return &p, nil
}

func decodeProduct(d *jx.Decoder) (product.Product, error) {
	var p product.Product
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = d.Int64()
		case "title":
			p.Title, err = d.Str()
		case "price":
			p.Price, err = decodeDecimal(d)
		case "description":
			p.Description, err = d.Str()
		case "category":
			p.Category, err = d.Str()
		case "image":
			p.Image, err = d.Str()
		case "rating":
			if d.Next() == jx.Null {
				return d.Null()
			}
			p.Rating, err = decodeRating(d)
		default:
			err = d.Skip()
		}
		return errors.Wrap(err, key)
	})
	return p, err
}

func decodeRating(d *jx.Decoder) (*product.Rating, error) {
	var r product.Rating
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "rate":
			r.Rate, err = d.Float64()
		case "count":
			r.Count, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	n, err := d.Num()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(n.String())
}
