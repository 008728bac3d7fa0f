package obs

import (
	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"
)

// ProfileOption configures continuous profiling.
type ProfileOption struct {
	AppName string
	Server  string
	Tags    map[string]string
}

// StartProfiler starts a pyroscope profiler and returns its stop func.
func StartProfiler(opt ProfileOption) (stop func(), err error) {
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: opt.AppName,
		ServerAddress:   opt.Server,
		Tags:            opt.Tags,
		Logger:          emptyLogger{},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
		},
	})
	if err != nil {
		return nil, err
	}
	logs.Infof("profiling %s to %s", opt.AppName, opt.Server)
	return func() { _ = profiler.Stop() }, nil
}

type emptyLogger struct{}

func (emptyLogger) Infof(_ string, _ ...interface{})  {}
func (emptyLogger) Debugf(_ string, _ ...interface{}) {}
func (emptyLogger) Errorf(_ string, _ ...interface{}) {}
