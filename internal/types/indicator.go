package types

type IndicatorType string

const (
	IndicatorTypeSMA         IndicatorType = "sma"
	IndicatorTypeEMA         IndicatorType = "ema"
	IndicatorTypeStdDev      IndicatorType = "stddev"
	IndicatorTypeZScore      IndicatorType = "zscore"
	IndicatorTypeRSI         IndicatorType = "rsi"
	IndicatorTypeMACD        IndicatorType = "macd"
	IndicatorTypeATR         IndicatorType = "atr"
	IndicatorTypeBBands      IndicatorType = "bbands"
	IndicatorTypeVolumeRatio IndicatorType = "volume_ratio"
	IndicatorTypeVolRatio    IndicatorType = "vol_ratio"
)
