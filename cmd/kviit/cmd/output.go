package cmd

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/kviit/internal/receipt"
)

// writeReceipt renders a parsed receipt in the requested format.
func writeReceipt(w io.Writer, rec receipt.Receipt, format string) error {
	switch format {
	case "json":
		data, err := rec.ToJSON()
		if err != nil {
			return fmt.Errorf("encode receipt: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		data, err := yaml.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode receipt: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "text":
		return writeReceiptText(w, rec)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeReceiptText(w io.Writer, rec receipt.Receipt) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Location: %s\n", rec.Location)
	if rec.Datetime != "" {
		fmt.Fprintf(&b, "Date: %s\n", rec.Datetime)
	}
	for _, item := range rec.Items {
		fmt.Fprintf(&b, "  %s", item.Name)
		if item.Quantity != nil {
			fmt.Fprintf(&b, "  %g %s", *item.Quantity, item.Unit)
		}
		if item.Price != nil {
			fmt.Fprintf(&b, "  %.2f", *item.Price)
		}
		if item.Discount != nil {
			fmt.Fprintf(&b, "  (-%.2f)", *item.Discount)
		}
		b.WriteByte('\n')
	}
	if rec.Total != nil {
		fmt.Fprintf(&b, "Total: %.2f\n", *rec.Total)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
