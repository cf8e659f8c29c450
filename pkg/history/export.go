package history

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/NotCoffee418/microgrid_monitor/pkg/types"
	"github.com/go-gota/gota/dataframe"
)

const CsvContentType = "text/csv"

var csvHeader = []string{"timestamp", "generation", "voltage", "battery_level", "temperature", "dust"}

// WriteCSV writes one header line and one row per reading.
func WriteCSV(w io.Writer, readings []types.Reading) error {
	if len(readings) == 0 {
		// dataframe refuses empty input, the header still goes out
		cw := csv.NewWriter(w)
		if err := cw.Write(csvHeader); err != nil {
			return err
		}
		cw.Flush()
		return cw.Error()
	}

	df := dataframe.LoadStructs(readings)
	if df.Err != nil {
		return fmt.Errorf("build dataframe: %w", df.Err)
	}
	return df.WriteCSV(w)
}
