package sizefit

// Fitter holds a mutable fitting configuration and notifies listeners when
// it changes. A Fitter is not safe for concurrent use: serialize setters
// with Fit, or share Config snapshots instead.
//
// The zero Fitter uses NoFit with every option disabled. Use
// NewDefaultFitter or NewFitter to start from the default mode and options.
type Fitter struct {
	config    Config
	listeners []func(Config)
}

// NewFitter returns a Fitter with the default fit options.
func NewFitter(target Size, mode FitMode) (*Fitter, error) {
	c, err := NewConfig(target, mode)
	if err != nil {
		return nil, err
	}
	return &Fitter{config: c}, nil
}

// NewDefaultFitter returns a Fitter in Fit mode with the default fit options
// and an unset target size.
func NewDefaultFitter() *Fitter {
	return &Fitter{config: Config{
		Target:  SizeOf(InvalidSize, InvalidSize),
		Mode:    Fit,
		Options: DefaultFitOptions(),
	}}
}

// NewFitterFromConfig returns a Fitter starting from c.
func NewFitterFromConfig(c Config) (*Fitter, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Fitter{config: c}, nil
}

// OnChanged registers fn to be called with the new configuration each time
// a setter alters it. Listeners run synchronously, in registration order,
// before the setter returns.
func (f *Fitter) OnChanged(fn func(Config)) {
	f.listeners = append(f.listeners, fn)
}

func (f *Fitter) Config() Config {
	return f.config
}

func (f *Fitter) TargetSize() Size {
	return f.config.Target
}

func (f *Fitter) FitMode() FitMode {
	return f.config.Mode
}

func (f *Fitter) IsFitOptionEnabled(option FitOption) bool {
	return f.config.Options.Enabled(option)
}

func (f *Fitter) SetTargetSize(size Size) (bool, error) {
	next := f.config
	next.Target = size
	return f.apply(next)
}

func (f *Fitter) SetTargetWidth(width int) (bool, error) {
	next := f.config
	next.Target.Width = width
	return f.apply(next)
}

func (f *Fitter) SetTargetHeight(height int) (bool, error) {
	next := f.config
	next.Target.Height = height
	return f.apply(next)
}

func (f *Fitter) SetFitMode(mode FitMode) (bool, error) {
	next := f.config
	next.Mode = mode
	return f.apply(next)
}

func (f *Fitter) SetFitOptionEnabled(option FitOption, enable bool) (bool, error) {
	options, err := f.config.Options.With(option, enable)
	if err != nil {
		return false, err
	}
	next := f.config
	next.Options = options
	return f.apply(next)
}

// SetConfig replaces the whole configuration at once, notifying listeners
// a single time.
func (f *Fitter) SetConfig(c Config) (bool, error) {
	return f.apply(c)
}

// Fit fits size with the current configuration.
func (f *Fitter) Fit(size Size) (Result, error) {
	return f.config.Fit(size)
}

func (f *Fitter) apply(next Config) (bool, error) {
	if err := next.Validate(); err != nil {
		return false, err
	}
	if next == f.config {
		return false, nil
	}
	f.config = next
	for _, fn := range f.listeners {
		fn(next)
	}
	return true, nil
}
