package commands

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/manageday-dev/manageday/internal/models"
)

// NewProductsCmd creates the products command group
func NewProductsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Manage products",
	}

	cmd.AddCommand(newProductsListCmd())
	cmd.AddCommand(newProductsGetCmd())
	cmd.AddCommand(newProductsCreateCmd())
	cmd.AddCommand(newProductsUpdateCmd())
	cmd.AddCommand(newProductsDeleteCmd())

	return cmd
}

func newProductsListCmd() *cobra.Command {
	var skip, limit int
	var name string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List products",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps("")
			if err != nil {
				return err
			}
			return runProductsList(d, skip, limit, name)
		},
	}

	cmd.Flags().IntVar(&skip, "skip", 0, "Number of records to skip")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of records to return")
	cmd.Flags().StringVar(&name, "name", "", "Filter products by name")

	return cmd
}

func runProductsList(d *deps, skip, limit int, name string) error {
	products, err := d.client.Products(context.Background(), skip, limit, name)
	if err != nil {
		return err
	}

	if len(products) == 0 {
		fmt.Fprintln(d.out, "No products found.")
		return nil
	}

	w := tabwriter.NewWriter(d.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tSTOCK")
	for _, product := range products {
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%d\n", product.ID, product.Name, product.Price, product.Stock)
	}
	return w.Flush()
}

func newProductsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id: %s", args[0])
			}
			d, err := newDeps("")
			if err != nil {
				return err
			}
			return runProductsGet(d, id)
		},
	}
}

func runProductsGet(d *deps, id int64) error {
	product, err := d.client.Product(context.Background(), id)
	if err != nil {
		return err
	}

	fmt.Fprintf(d.out, "ID:          %d\n", product.ID)
	fmt.Fprintf(d.out, "Name:        %s\n", product.Name)
	if product.Description != "" {
		fmt.Fprintf(d.out, "Description: %s\n", product.Description)
	}
	fmt.Fprintf(d.out, "Price:       %.2f\n", product.Price)
	fmt.Fprintf(d.out, "Stock:       %d\n", product.Stock)
	return nil
}

func newProductsCreateCmd() *cobra.Command {
	var name, description string
	var price float64
	var stock int

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("product name is required (use --name)")
			}
			d, err := newDeps("")
			if err != nil {
				return err
			}
			return runProductsCreate(d, models.Product{
				Name:        name,
				Description: description,
				Price:       price,
				Stock:       stock,
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Product name")
	cmd.Flags().StringVar(&description, "description", "", "Product description")
	cmd.Flags().Float64Var(&price, "price", 0, "Product price")
	cmd.Flags().IntVar(&stock, "stock", 0, "Initial stock")

	return cmd
}

func runProductsCreate(d *deps, product models.Product) error {
	created, err := d.client.CreateProduct(context.Background(), product)
	if err != nil {
		return err
	}
	fmt.Fprintf(d.out, "✓ Created product %s (id %d)\n", created.Name, created.ID)
	return nil
}

func newProductsUpdateCmd() *cobra.Command {
	var name, description string
	var price float64
	var stock int

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id: %s", args[0])
			}
			flags := cmd.Flags()
			if !flags.Changed("name") && !flags.Changed("description") &&
				!flags.Changed("price") && !flags.Changed("stock") {
				return fmt.Errorf("nothing to update (use --name, --description, --price or --stock)")
			}
			d, err := newDeps("")
			if err != nil {
				return err
			}
			return runProductsUpdate(d, id, func(product *models.Product) {
				if flags.Changed("name") {
					product.Name = name
				}
				if flags.Changed("description") {
					product.Description = description
				}
				if flags.Changed("price") {
					product.Price = price
				}
				if flags.Changed("stock") {
					product.Stock = stock
				}
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Product name")
	cmd.Flags().StringVar(&description, "description", "", "Product description")
	cmd.Flags().Float64Var(&price, "price", 0, "Product price")
	cmd.Flags().IntVar(&stock, "stock", 0, "Stock level")

	return cmd
}

// runProductsUpdate fetches the product, applies the requested changes, and
// writes the whole record back.
func runProductsUpdate(d *deps, id int64, apply func(*models.Product)) error {
	ctx := context.Background()

	product, err := d.client.Product(ctx, id)
	if err != nil {
		return err
	}
	apply(product)

	updated, err := d.client.UpdateProduct(ctx, id, *product)
	if err != nil {
		return err
	}
	fmt.Fprintf(d.out, "✓ Updated product %s (id %d)\n", updated.Name, updated.ID)
	return nil
}

func newProductsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a product",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id: %s", args[0])
			}
			d, err := newDeps("")
			if err != nil {
				return err
			}
			return runProductsDelete(d, id)
		},
	}
}

func runProductsDelete(d *deps, id int64) error {
	if err := d.client.DeleteProduct(context.Background(), id); err != nil {
		return err
	}
	fmt.Fprintf(d.out, "✓ Deleted product %d\n", id)
	return nil
}
