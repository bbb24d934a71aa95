package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/itsneelabh/mymarket/core"
	"github.com/itsneelabh/mymarket/pkg/codec"
)

func printProducts(out io.Writer, products []*core.Product) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tCATEGORY\tSUBCATEGORY\tPRICE\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			p.Title(), p.Category(), p.Subcategory(),
			codec.FormatPrice(p.Price()), codec.FormatQuantity(p.Quantity(), string(p.Unit())))
	}
	return tw.Flush()
}

func cmdList(_ context.Context, cat *core.Catalog, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	category := fs.String("category", "", "only this category")
	sub := fs.String("subcategory", "", "only this subcategory")
	unavailable := fs.Bool("unavailable", false, "only products out of stock")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var products []*core.Product
	switch {
	case *unavailable:
		products = cat.UnavailableProducts()
	case *sub != "":
		products = cat.ProductsBySubcategory(*sub)
	case *category != "":
		products = cat.ProductsByCategory(*category)
	default:
		products = cat.Products()
	}
	return printProducts(out, products)
}

func cmdSearch(_ context.Context, cat *core.Catalog, args []string, out io.Writer) error {
	return printProducts(out, cat.SearchProducts(strings.Join(args, " ")))
}

func cmdCategories(_ context.Context, cat *core.Catalog, _ []string, out io.Writer) error {
	for _, c := range cat.Categories() {
		fmt.Fprintf(out, "%s: %s\n", c, strings.Join(cat.SubCategories(c), ", "))
	}
	return nil
}

func cmdTop(_ context.Context, cat *core.Catalog, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("top", flag.ContinueOnError)
	n := fs.Int("n", cat.Config().TopProducts, "number of products")
	if err := fs.Parse(args); err != nil {
		return err
	}
	titles := cat.FrequentlyBoughtProducts(*n)
	if titles == nil {
		fmt.Fprintln(out, "no purchases yet")
		return nil
	}
	for i, t := range titles {
		fmt.Fprintf(out, "%d. %s\n", i+1, t)
	}
	return nil
}

// login parses -user and -password and authenticates. Remaining arguments are
// returned.
func login(cat *core.Catalog, name string, args []string) (core.Session, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	user := fs.String("user", "", "username")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return core.Session{}, nil, err
	}
	s, err := cat.Authenticate(*user, *password)
	return s, fs.Args(), err
}

func customerLogin(cat *core.Catalog, name string, args []string) (*core.Customer, []string, error) {
	s, rest, err := login(cat, name, args)
	if err != nil {
		return nil, nil, err
	}
	if s.IsAdmin() {
		return nil, nil, fmt.Errorf("%s: administrators have no cart", name)
	}
	return s.Customer, rest, nil
}

func cmdStats(_ context.Context, cat *core.Catalog, args []string, out io.Writer) error {
	s, _, err := login(cat, "stats", args)
	if err != nil {
		return err
	}
	if !s.IsAdmin() {
		return fmt.Errorf("stats: administrator login required")
	}

	st := cat.Stats()
	fmt.Fprintf(out, "products:    %d (%d unavailable)\n", st.TotalProducts, st.UnavailableProducts)
	fmt.Fprintf(out, "customers:   %d\n", st.TotalCustomers)
	fmt.Fprintf(out, "orders:      %d\n", st.TotalOrders)

	statuses := make([]string, 0, len(st.OrdersByStatus))
	for status := range st.OrdersByStatus {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		fmt.Fprintf(out, "  %s: %d\n", status, st.OrdersByStatus[core.OrderStatus(status)])
	}
	for _, pc := range st.ProductOrderCounts {
		fmt.Fprintf(out, "%4d  %s\n", pc.Count, pc.Title)
	}
	return nil
}

func cmdSignup(_ context.Context, cat *core.Catalog, args []string, out io.Writer) error {
	if len(args) != 4 {
		return fmt.Errorf("signup: expected USERNAME PASSWORD FIRSTNAME SURNAME")
	}
	c, err := cat.SignUp(args[0], args[1], args[2], args[3])
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "welcome, %s %s\n", c.FirstName(), c.Surname())
	return nil
}

func cmdCart(_ context.Context, cat *core.Catalog, args []string, out io.Writer) error {
	c, rest, err := customerLogin(cat, "cart", args)
	if err != nil {
		return err
	}

	if len(rest) > 0 {
		if err := applyCartAction(cat, c, rest); err != nil {
			return err
		}
	}

	for _, p := range c.Cart() {
		fmt.Fprintf(out, "%s x%d  %s\n", p.Title(), p.Quantity(), core.FormatCost(p.Price()*float64(p.Quantity())))
	}
	fmt.Fprintf(out, "total: %s\n", core.FormatCost(c.TotalCartCost()))
	return nil
}

func applyCartAction(cat *core.Catalog, c *core.Customer, args []string) error {
	action := args[0]
	if action == "clear" {
		c.ClearCart()
		return nil
	}
	if len(args) < 2 {
		return fmt.Errorf("cart %s: product title required", action)
	}
	p, ok := cat.Product(args[1])
	if !ok {
		return fmt.Errorf("cart %s %q: %w", action, args[1], core.ErrProductNotFound)
	}

	switch action {
	case "remove":
		if !c.RemoveProductFromCart(p) {
			return fmt.Errorf("cart remove %q: %w", args[1], core.ErrNotInCart)
		}
		return nil
	case "add", "set":
		if len(args) < 3 {
			return fmt.Errorf("cart %s: quantity required", action)
		}
		qty, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("cart %s: invalid quantity %q", action, args[2])
		}
		if action == "add" {
			return c.AddProductToCart(p, qty)
		}
		return c.AdjustProductQuantityInCart(p, qty)
	}
	return fmt.Errorf("cart: unknown action %q", action)
}

func cmdBuy(_ context.Context, cat *core.Catalog, args []string, out io.Writer) error {
	c, rest, err := customerLogin(cat, "buy", args)
	if err != nil {
		return err
	}
	if len(rest)%2 != 0 {
		return fmt.Errorf("buy: expected TITLE QTY pairs")
	}
	for i := 0; i < len(rest); i += 2 {
		if err := applyCartAction(cat, c, []string{"add", rest[i], rest[i+1]}); err != nil {
			return err
		}
	}

	order, err := c.CompleteOrder()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "order placed %s: %d products, %s\n", order.Date(), len(order.Products()), order.TotalCost())
	return nil
}
