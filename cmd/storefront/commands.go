package main

import (
	"strconv"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/product"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid product id %q", s)
	}
	return id, nil
}

func newProductsCmd(e *env) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List catalog products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := catalog.New(e.products, e.lg)
			if err := c.FetchAll(cmd.Context()); err != nil {
				return err
			}
			products := catalog.Filter(c.State().Products, search)
			return printProducts(cmd.OutOrStdout(), products, search)
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by title (case-insensitive)")
	return cmd
}

func newProductCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Show a single product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			view := catalog.NewProductView(e.products)
			defer view.Close()

			p, err := view.Fetch(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printProduct(cmd.OutOrStdout(), p)
		},
	}
}

func newCartCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show or change the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := e.cart(cmd)
			if err != nil {
				return err
			}
			return printCart(cmd.OutOrStdout(), c.State())
		},
	}
	cmd.AddCommand(
		newCartAddCmd(e),
		newCartRemoveCmd(e),
		newCartSetCmd(e),
		newCartClearCmd(e),
	)
	return cmd
}

func newCartAddCmd(e *env) *cobra.Command {
	var quantity int
	cmd := &cobra.Command{
		Use:   "add <id>...",
		Short: "Add products to the cart",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if quantity < 1 {
				return errors.New("quantity must be at least 1")
			}
			ids := make([]int64, len(args))
			for i, a := range args {
				id, err := parseID(a)
				if err != nil {
					return err
				}
				ids[i] = id
			}

			products, err := fetchProducts(cmd, e.products, ids)
			if err != nil {
				return err
			}

			c, err := e.cart(cmd)
			if err != nil {
				return err
			}
			var state cart.State
			for _, p := range products {
				line := cart.Line{ID: p.ID, Title: p.Title, Price: p.Price, Image: p.Image}
				for range quantity {
					state = c.Add(cmd.Context(), line)
				}
			}
			return printCart(cmd.OutOrStdout(), state)
		},
	}
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "units of each product to add")
	return cmd
}

// fetchProducts loads products concurrently, preserving the order of ids.
func fetchProducts(cmd *cobra.Command, repo product.Repository, ids []int64) ([]*product.Product, error) {
	out := make([]*product.Product, len(ids))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(4)

	for i, id := range ids {
		g.Go(func() error {
			p, err := repo.GetByID(ctx, id)
			if err != nil {
				return errors.Wrapf(err, "product %d", id)
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func newCartRemoveCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := e.cart(cmd)
			if err != nil {
				return err
			}
			return printCart(cmd.OutOrStdout(), c.Remove(cmd.Context(), id))
		},
	}
}

func newCartSetCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <quantity>",
		Short: "Set the quantity of a cart line; 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.Errorf("invalid quantity %q", args[1])
			}
			c, err := e.cart(cmd)
			if err != nil {
				return err
			}
			return printCart(cmd.OutOrStdout(), c.SetQuantity(cmd.Context(), id, qty))
		},
	}
}

func newCartClearCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := e.cart(cmd)
			if err != nil {
				return err
			}
			return printCart(cmd.OutOrStdout(), c.Clear(cmd.Context()))
		},
	}
}

func newCheckoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Place an order from the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := e.cart(cmd)
			if err != nil {
				return err
			}
			snapshot := c.State()
			o, err := e.checkout.Checkout(cmd.Context(), snapshot)
			if err != nil {
				return err
			}
			c.Deduct(cmd.Context(), snapshot.Items)
			return printOrder(cmd.OutOrStdout(), o)
		},
	}
}

func newOrdersCmd(e *env) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List placed orders, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			orders, err := e.orders.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printOrders(cmd.OutOrStdout(), orders)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of orders to show")
	return cmd
}
