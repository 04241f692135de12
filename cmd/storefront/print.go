package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func printProducts(w io.Writer, products []product.Product, query string) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tCATEGORY")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t$%s\t%s\n", p.ID, p.Title, p.Price.StringFixed(2), p.Category)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if query != "" {
		_, err := fmt.Fprintf(w, "%d products matching %q\n", len(products), query)
		return err
	}
	_, err := fmt.Fprintf(w, "%d products\n", len(products))
	return err
}

func printProduct(w io.Writer, p *product.Product) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID:\t%d\n", p.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", p.Title)
	fmt.Fprintf(tw, "Price:\t$%s\n", p.Price.StringFixed(2))
	fmt.Fprintf(tw, "Category:\t%s\n", p.Category)
	if p.Rating != nil {
		fmt.Fprintf(tw, "Rating:\t%.1f (%d reviews)\n", p.Rating.Rate, p.Rating.Count)
	}
	fmt.Fprintf(tw, "Image:\t%s\n", p.Image)
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s\n", p.Description)
	return err
}

func printCart(w io.Writer, s cart.State) error {
	if s.Empty() {
		_, err := fmt.Fprintln(w, "Your cart is empty")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tQTY\tSUBTOTAL")
	for _, it := range s.Items {
		fmt.Fprintf(tw, "%d\t%s\t$%s\t%d\t$%s\n",
			it.ID, it.Title, it.Price.StringFixed(2), it.Quantity, it.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(tw, "\t\t\t%d\t$%s\n", s.TotalItems, s.TotalPrice.StringFixed(2))
	return tw.Flush()
}

func printOrder(w io.Writer, o *order.Order) error {
	_, err := fmt.Fprintf(w, "Order %s placed: %d items, total $%s\n",
		o.ID, o.TotalItems(), o.Total.StringFixed(2))
	return err
}

func printOrders(w io.Writer, orders []order.Order) error {
	if len(orders) == 0 {
		_, err := fmt.Fprintln(w, "No orders yet")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tPLACED\tITEMS\tTOTAL")
	for _, o := range orders {
		fmt.Fprintf(tw, "%s\t%s\t%d\t$%s\n",
			o.ID, o.CreatedAt.Local().Format(time.DateTime), o.TotalItems(), o.Total.StringFixed(2))
	}
	return tw.Flush()
}
