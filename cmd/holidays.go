package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jjenkins/prazos/internal/model"
)

var (
	holidaysYear         int
	holidaysState        string
	holidaysMunicipality string
)

var holidaysCmd = &cobra.Command{
	Use:   "holidays",
	Short: "List the holidays of a year for a jurisdiction",
	Long: `Holidays lists every non-business day of the year besides weekends:
national fixed and moving holidays, the forensic recess and the state and
municipal holidays of the jurisdiction.

Examples:
  ./prazos holidays --year 2026 --state SP --municipality "São Paulo"`,
	RunE: runHolidays,
}

func init() {
	rootCmd.AddCommand(holidaysCmd)

	holidaysCmd.Flags().IntVarP(&holidaysYear, "year", "y", time.Now().Year(), "Year")
	holidaysCmd.Flags().StringVarP(&holidaysState, "state", "s", "", "State (UF)")
	holidaysCmd.Flags().StringVarP(&holidaysMunicipality, "municipality", "m", "", "Municipality")
}

func runHolidays(cmd *cobra.Command, args []string) error {
	svc, err := newServices(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer svc.Close()

	j := model.Jurisdiction{State: holidaysState, Municipality: holidaysMunicipality}.Normalize()
	holidays, err := svc.registry.Holidays(holidaysYear, j)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if j.State != "" && svc.registry.Incomplete(j) {
		fmt.Fprintf(out, "Warning: no local holidays known for %s, listing national holidays only\n\n", j)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, h := range holidays {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", h.Date.Format(model.DateLayout), h.Date.Weekday(), h.Layer, h.Name)
	}
	return w.Flush()
}
