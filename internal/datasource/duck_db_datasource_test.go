package datasource

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-sweep/internal/logger"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type DuckDBDataSourceTestSuite struct {
	suite.Suite
	ds  DataSource
	dir string
}

func TestDuckDBDataSourceSuite(t *testing.T) {
	suite.Run(t, new(DuckDBDataSourceTestSuite))
}

const barsCSV = `time,open,high,low,close,volume,zscore
2024-01-01 09:30:00,100,101,99,100.5,1000,
2024-01-01 09:31:00,100.5,102,100,101.5,1200,0.5
2024-01-01 09:32:00,101.5,103,101,102.5,900,1.25
2024-01-01 09:33:00,102.5,103,100,100.5,1500,-0.75
`

func (suite *DuckDBDataSourceTestSuite) SetupTest() {
	ds, err := NewDataSource("", logger.NewNopLogger())
	suite.Require().NoError(err)

	suite.ds = ds
	suite.dir = suite.T().TempDir()
}

func (suite *DuckDBDataSourceTestSuite) TearDownTest() {
	suite.NoError(suite.ds.Close())
}

func (suite *DuckDBDataSourceTestSuite) writeCSV(name string, content string) string {
	path := filepath.Join(suite.dir, name)
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0644))

	return path
}

func (suite *DuckDBDataSourceTestSuite) TestReadCSV() {
	suite.Require().NoError(suite.ds.Initialize(suite.writeCSV("bars.csv", barsCSV)))

	bars, err := Load(suite.ds, optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Require().Len(bars, 4)

	for i, bar := range bars {
		suite.Equal(i, bar.Index)
	}

	first := bars[0]
	suite.Equal(time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC), first.Time.UTC())
	suite.Equal(100.0, first.Open)
	suite.Equal(101.0, first.High)
	suite.Equal(99.0, first.Low)
	suite.Equal(100.5, first.Close)
	suite.Equal(1000.0, first.Volume)

	// empty cells are absent signals
	suite.False(first.Signals.Has("zscore"))

	z, ok := bars[2].Signals.Get("zscore")
	suite.True(ok)
	suite.Equal(1.25, z)
}

func (suite *DuckDBDataSourceTestSuite) TestTimeWindow() {
	suite.Require().NoError(suite.ds.Initialize(suite.writeCSV("bars.csv", barsCSV)))

	start := optional.Some(time.Date(2024, 1, 1, 9, 31, 0, 0, time.UTC))
	end := optional.Some(time.Date(2024, 1, 1, 9, 32, 0, 0, time.UTC))

	count, err := suite.ds.Count(start, end)
	suite.Require().NoError(err)
	suite.Equal(2, count)

	bars, err := Load(suite.ds, start, end)
	suite.Require().NoError(err)
	suite.Require().Len(bars, 2)
	suite.Equal(0, bars[0].Index)
	suite.Equal(101.5, bars[0].Close)
	suite.Equal(102.5, bars[1].Close)
}

func (suite *DuckDBDataSourceTestSuite) TestReadParquet() {
	csvPath := suite.writeCSV("bars.csv", barsCSV)
	parquetPath := filepath.Join(suite.dir, "bars.parquet")

	duck := suite.ds.(*DuckDBDataSource)
	_, err := duck.db.Exec("COPY (SELECT * FROM read_csv_auto('" + csvPath + "')) TO '" + parquetPath + "' (FORMAT PARQUET)")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.ds.Initialize(parquetPath))

	count, err := suite.ds.Count(optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(4, count)
}

func (suite *DuckDBDataSourceTestSuite) TestStopEarly() {
	suite.Require().NoError(suite.ds.Initialize(suite.writeCSV("bars.csv", barsCSV)))

	seen := 0

	for _, err := range suite.ds.ReadAll(optional.None[time.Time](), optional.None[time.Time]()) {
		suite.Require().NoError(err)

		seen++
		if seen == 2 {
			break
		}
	}

	suite.Equal(2, seen)
}

func (suite *DuckDBDataSourceTestSuite) TestMissingColumn() {
	path := suite.writeCSV("bars.csv", "time,open,high,low,close\n2024-01-01 09:30:00,1,1,1,1\n")
	suite.Require().NoError(suite.ds.Initialize(path))

	_, err := Load(suite.ds, optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().Error(err)
	suite.True(errors.IsDataError(err))
	suite.Equal(errors.ErrCodeMalformedBar, errors.GetCode(err))
}

func (suite *DuckDBDataSourceTestSuite) TestNonFiniteSignalIsDataError() {
	tests := []struct {
		name  string
		value string
	}{
		{"nan", "nan"},
		{"infinity", "inf"},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			content := "time,open,high,low,close,volume,zscore\n" +
				"2024-01-01 09:30:00,100,101,99,100.5,1000,\n" +
				"2024-01-01 09:31:00,100.5,102,100,101.5,1200,0.5\n" +
				"2024-01-01 09:32:00,101.5,103,101,102.5,900," + tc.value + "\n"
			suite.Require().NoError(suite.ds.Initialize(suite.writeCSV(tc.name+".csv", content)))

			bars, err := Load(suite.ds, optional.None[time.Time](), optional.None[time.Time]())
			suite.Require().Error(err)
			suite.Nil(bars)
			suite.True(errors.IsDataError(err))
			suite.Equal(errors.ErrCodeNaNValue, errors.GetCode(err))
		})
	}
}

func (suite *DuckDBDataSourceTestSuite) TestInitializeErrors() {
	err := suite.ds.Initialize(filepath.Join(suite.dir, "bars.json"))
	suite.Equal(errors.ErrCodeDataSourceUnavailable, errors.GetCode(err))

	err = suite.ds.Initialize(filepath.Join(suite.dir, "missing.csv"))
	suite.Equal(errors.ErrCodeDataNotFound, errors.GetCode(err))
	suite.True(errors.IsDataError(err))
}
