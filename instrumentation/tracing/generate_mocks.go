//go:generate mockgen -destination=mock_datarecording_test.go -package=tracing github.com/sarchlab/memplace/datarecording DataRecorder
//go:generate mockgen -destination=mock_tracer_test.go -package=tracing github.com/sarchlab/memplace/instrumentation/tracing Tracer

package tracing
