package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jjenkins/prazos/internal/model"
)

var (
	calcType           string
	calcDate           string
	calcState          string
	calcMunicipality   string
	calcPublicDefender bool
	calcJSON           bool
)

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Calculate a deadline from the command line",
	Long: `Calculate prints the final deadline of an act and the trace of every rule
applied.

Examples:
  ./prazos calculate --type RESPOSTA_ACUSACAO --date 2025-11-28 --state SP --public-defender
  ./prazos calculate --type CONTESTACAO --date 2025-06-06 --state RJ --municipality "Rio de Janeiro" --json`,
	RunE: runCalculate,
}

func init() {
	rootCmd.AddCommand(calculateCmd)

	calculateCmd.Flags().StringVarP(&calcType, "type", "t", "", "Deadline type code")
	calculateCmd.Flags().StringVarP(&calcDate, "date", "d", "", "Expedition date (YYYY-MM-DD)")
	calculateCmd.Flags().StringVarP(&calcState, "state", "s", "", "State (UF)")
	calculateCmd.Flags().StringVarP(&calcMunicipality, "municipality", "m", "", "Municipality")
	calculateCmd.Flags().BoolVar(&calcPublicDefender, "public-defender", false, "The party is assisted by the public defender")
	calculateCmd.Flags().BoolVar(&calcJSON, "json", false, "Print the result as JSON")
	_ = calculateCmd.MarkFlagRequired("type")
	_ = calculateCmd.MarkFlagRequired("date")
	_ = calculateCmd.MarkFlagRequired("state")
}

func runCalculate(cmd *cobra.Command, args []string) error {
	expedition, err := model.ParseDate(calcDate)
	if err != nil {
		return err
	}

	svc, err := newServices(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer svc.Close()

	res, err := svc.engine.CalculateByCode(model.CalculationRequest{
		ExpeditionDate:        expedition,
		DeadlineTypeCode:      calcType,
		Jurisdiction:          model.Jurisdiction{State: calcState, Municipality: calcMunicipality},
		IsPublicDefenderParty: calcPublicDefender,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if calcJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Deadline type:\t%s\n", res.DeadlineTypeCode)
	fmt.Fprintf(w, "Jurisdiction:\t%s\n", res.Jurisdiction)
	fmt.Fprintf(w, "Expedition:\t%s\n", res.ExpeditionDate.Format(model.DateLayout))
	fmt.Fprintf(w, "Reading date:\t%s\n", res.ReadingDate.Format(model.DateLayout))
	fmt.Fprintf(w, "Effective days:\t%d (x%d, %s)\n", res.EffectiveDays, res.MultiplierApplied, res.CountingMode)
	fmt.Fprintf(w, "Raw deadline:\t%s\n", res.RawDeadlineDate.Format(model.DateLayout))
	fmt.Fprintf(w, "Final deadline:\t%s\n", res.FinalDeadlineDate.Format(model.DateLayout))
	if res.JurisdictionDataIncomplete {
		fmt.Fprintf(w, "Warning:\tno local holidays known for %s, national holidays only\n", res.Jurisdiction)
	}
	fmt.Fprintln(w)
	for i, e := range res.Trace {
		fmt.Fprintf(w, "%d. %s\t%s\n", i+1, e.Rule, e.Reason)
	}
	return w.Flush()
}
