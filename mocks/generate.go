package mocks

//go:generate mockgen -destination=./mock_engine.go -package=mocks github.com/rxtech-lab/argo-sweep/internal/backtest/engine Engine
//go:generate mockgen -destination=./mock_broker.go -package=mocks github.com/rxtech-lab/argo-sweep/internal/backtest/broker Broker
//go:generate mockgen -destination=./mock_datasource.go -package=mocks github.com/rxtech-lab/argo-sweep/internal/datasource DataSource
