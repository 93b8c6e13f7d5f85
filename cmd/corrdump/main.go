// Command corrdump converts one pandas-layout HDF5 group into a
// row-per-channel table and prints a summary line per channel.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/cmplx"
	"os"
	"strings"

	"github.com/gomlx/gomlx/pkg/core/tensors"
	_ "gocloud.dev/blob/fileblob"

	"github.com/latticeio/corrframe"
	"github.com/latticeio/corrframe/store"
)

func main() {
	var (
		url       = flag.String("url", "file://.", "bucket URL holding the data")
		key       = flag.String("key", "", "object key of the HDF5 file")
		group     = flag.String("group", "/", "group to convert")
		dump      = flag.Bool("dump", false, "read a dump layout instead of an HDF5 file")
		timeExt   = flag.Int("time", 0, "time extent (0 = infer from axis0_level1)")
		timeMajor = flag.Bool("time-major", false, "payload rows are time slices, not configurations")
		names     = flag.String("names", "", "comma-separated factor column names")
	)
	flag.Parse()

	if err := run(*url, *key, *group, *dump, *timeExt, *timeMajor, *names); err != nil {
		fmt.Fprintln(os.Stderr, "corrdump:", err)
		os.Exit(1)
	}
}

func run(url, key, group string, dump bool, timeExt int, timeMajor bool, names string) error {
	ctx := context.Background()

	var (
		g   corrframe.Group
		err error
	)
	if dump {
		g, err = store.OpenDump(ctx, url, group)
	} else {
		if key == "" {
			return fmt.Errorf("-key is required unless -dump is set")
		}
		g, err = store.OpenHDF5(ctx, url, key, group)
	}
	if err != nil {
		return err
	}

	var opts []corrframe.Option
	if timeExt > 0 {
		opts = append(opts, corrframe.WithTimeExtent(timeExt))
	}
	if timeMajor {
		opts = append(opts, corrframe.TimeMajor())
	}
	if names != "" {
		opts = append(opts, corrframe.WithFactorNames(strings.Split(names, ",")...))
	}

	table, err := corrframe.Convert(g, opts...)
	if err != nil {
		return err
	}

	fmt.Println(strings.Join(table.Columns(), "\t"))
	for i := 0; i < table.NumRows(); i++ {
		row := table.Row(i)
		dims := row.Payload.Shape().Dimensions
		fmt.Printf("%s\t%dx%d |mean|=%.6g\n",
			strings.Join(row.Values, "\t"), dims[0], dims[1], meanAbs(row.Payload))
	}
	return nil
}

func meanAbs(payload *tensors.Tensor) float64 {
	rows := payload.Value().([][]complex128)
	var sum float64
	var n int
	for _, row := range rows {
		for _, v := range row {
			sum += cmplx.Abs(v)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
