package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/apps"
	"github.com/trezcool/schoolops/core"
	reportsvc "github.com/trezcool/schoolops/services/report"
)

// exportRevenue writes the revenue workbook of month to out.
func (cli *commandLine) exportRevenue(month, out string) error {
	if !core.IsYearMonth(month) {
		return apps.NewArgumentError(fmt.Sprintf("invalid month %q: expected YYYY-MM", month))
	}
	if out == "" {
		out = reportsvc.RevenueFilename(month)
	}

	rep, err := cli.tuitionSvc.Revenue(context.Background(), month)
	if err != nil {
		return errors.Wrap(err, "building revenue report")
	}
	data, err := reportsvc.RevenueWorkbook(rep)
	if err != nil {
		return errors.Wrap(err, "rendering revenue workbook")
	}
	if err = os.WriteFile(out, data, 0o644); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	fmt.Printf("%d tuitions exported to %s\n", rep.Count, out)
	return nil
}
