package commands

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/manageday-dev/manageday/internal/models"
)

// NewOrdersCmd creates the orders command group
func NewOrdersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Manage orders",
	}

	cmd.AddCommand(newOrdersListCmd())
	cmd.AddCommand(newOrdersGetCmd())
	cmd.AddCommand(newOrdersCreateCmd())
	cmd.AddCommand(newOrdersUpdateCmd())
	cmd.AddCommand(newOrdersDeleteCmd())

	return cmd
}

func newOrdersListCmd() *cobra.Command {
	var skip, limit int

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newDeps("")
			if err != nil {
				return err
			}
			return runOrdersList(d, skip, limit)
		},
	}

	cmd.Flags().IntVar(&skip, "skip", 0, "Number of records to skip")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of records to return")

	return cmd
}

func runOrdersList(d *deps, skip, limit int) error {
	orders, err := d.client.Orders(context.Background(), skip, limit)
	if err != nil {
		return err
	}

	if len(orders) == 0 {
		fmt.Fprintln(d.out, "No orders found.")
		return nil
	}

	w := tabwriter.NewWriter(d.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCUSTOMER\tSTATUS\tTOTAL")
	for _, order := range orders {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\n", order.ID, order.CustomerName, order.Status, order.Total)
	}
	return w.Flush()
}

func newOrdersGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid order id: %s", args[0])
			}
			d, err := newDeps("")
			if err != nil {
				return err
			}
			return runOrdersGet(d, id)
		},
	}
}

func runOrdersGet(d *deps, id int64) error {
	order, err := d.client.Order(context.Background(), id)
	if err != nil {
		return err
	}

	fmt.Fprintf(d.out, "ID:       %d\n", order.ID)
	fmt.Fprintf(d.out, "Customer: %s\n", order.CustomerName)
	fmt.Fprintf(d.out, "Status:   %s\n", order.Status)
	fmt.Fprintf(d.out, "Total:    %.2f\n", order.Total)
	if order.CreatedAt != "" {
		fmt.Fprintf(d.out, "Created:  %s\n", order.CreatedAt)
	}
	return nil
}

func newOrdersCreateCmd() *cobra.Command {
	var customer, status string
	var total float64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an order",
		RunE: func(cmd *cobra.Command, args []string) error {
			if customer == "" {
				return fmt.Errorf("customer name is required (use --customer)")
			}
			d, err := newDeps("")
			if err != nil {
				return err
			}
			return runOrdersCreate(d, models.Order{
				CustomerName: customer,
				Status:       status,
				Total:        total,
			})
		},
	}

	cmd.Flags().StringVar(&customer, "customer", "", "Customer name")
	cmd.Flags().StringVar(&status, "status", "pending", "Order status")
	cmd.Flags().Float64Var(&total, "total", 0, "Order total")

	return cmd
}

func runOrdersCreate(d *deps, order models.Order) error {
	created, err := d.client.CreateOrder(context.Background(), order)
	if err != nil {
		return err
	}
	fmt.Fprintf(d.out, "✓ Created order %d for %s\n", created.ID, created.CustomerName)
	return nil
}

func newOrdersUpdateCmd() *cobra.Command {
	var customer, status string
	var total float64

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid order id: %s", args[0])
			}
			if !cmd.Flags().Changed("customer") && !cmd.Flags().Changed("status") && !cmd.Flags().Changed("total") {
				return fmt.Errorf("nothing to update (use --customer, --status or --total)")
			}
			d, err := newDeps("")
			if err != nil {
				return err
			}
			return runOrdersUpdate(d, id, func(order *models.Order) {
				if cmd.Flags().Changed("customer") {
					order.CustomerName = customer
				}
				if cmd.Flags().Changed("status") {
					order.Status = status
				}
				if cmd.Flags().Changed("total") {
					order.Total = total
				}
			})
		},
	}

	cmd.Flags().StringVar(&customer, "customer", "", "Customer name")
	cmd.Flags().StringVar(&status, "status", "", "Order status")
	cmd.Flags().Float64Var(&total, "total", 0, "Order total")

	return cmd
}

// runOrdersUpdate fetches the order, applies the requested changes on top of
// the current state, and writes the full record back; the update endpoint
// expects the whole payload.
func runOrdersUpdate(d *deps, id int64, apply func(*models.Order)) error {
	ctx := context.Background()

	order, err := d.client.Order(ctx, id)
	if err != nil {
		return err
	}
	apply(order)

	updated, err := d.client.UpdateOrder(ctx, id, *order)
	if err != nil {
		return err
	}
	fmt.Fprintf(d.out, "✓ Updated order %d (status %s)\n", updated.ID, updated.Status)
	return nil
}

func newOrdersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete an order",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid order id: %s", args[0])
			}
			d, err := newDeps("")
			if err != nil {
				return err
			}
			return runOrdersDelete(d, id)
		},
	}
}

func runOrdersDelete(d *deps, id int64) error {
	if err := d.client.DeleteOrder(context.Background(), id); err != nil {
		return err
	}
	fmt.Fprintf(d.out, "✓ Deleted order %d\n", id)
	return nil
}
