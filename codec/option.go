package codec

import (
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-pantheon/fabrica-iff/conf"
)

type Option func(o *Options)

func WithConf(conf conf.Config) Option {
	return func(o *Options) {
		o.conf = conf
	}
}

func WithLogger(logger log.Logger) Option {
	return func(o *Options) {
		o.logger = logger
	}
}

// WithMaxPayloadSize ends a decoder's sequence at the first frame declaring
// a payload larger than size, before the payload is allocated.
func WithMaxPayloadSize(size uint32) Option {
	return func(o *Options) {
		o.conf.Decoder.MaxPayloadSize = size
	}
}

type Options struct {
	conf   conf.Config
	logger log.Logger
}

func NewOptions(opts ...Option) *Options {
	ret := &Options{
		conf:   conf.Default(),
		logger: log.DefaultLogger,
	}

	for _, o := range opts {
		o(ret)
	}

	return ret
}

func (o *Options) Conf() conf.Config {
	return o.conf
}

func (o *Options) Logger() log.Logger {
	return o.logger
}
