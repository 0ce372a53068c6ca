package config

type Config struct {
	Listen      string             `yaml:"listen"`
	ProbePath   string             `yaml:"probe_path"`
	MetricsPath string             `yaml:"metrics_path"`
	Timeout     float64            `yaml:"timeout"`
	Devices     map[string]*Device `yaml:"devices"`
	Global      Global             `yaml:"global"`
}

func DefaultConfig() Config {
	return Config{
		Listen:      ":9778",
		ProbePath:   "/probe",
		MetricsPath: "/metrics",
		Timeout:     60,
		Global: Global{
			Username: DefaultUsername,
		},
	}
}

func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	*c = DefaultConfig()

	type plain Config
	if err := unmarshal((*plain)(c)); err != nil {
		return err
	}

	if c.Global.Username == "" {
		c.Global.Username = DefaultUsername
	}

	for _, device := range c.Devices {
		if device == nil {
			continue
		}
		if device.Username == nil {
			username := c.Global.Username
			device.Username = &username
		}
		if device.Password == nil && device.PasswordFile == "" {
			password := c.Global.Password
			device.Password = &password
		}
		if device.SendCPassword == nil {
			sendCPassword := c.Global.SendCPassword
			device.SendCPassword = &sendCPassword
		}
	}

	return nil
}

type Global struct {
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	SendCPassword bool   `yaml:"send_cpassword"`
}

type Device struct {
	Address       string  `yaml:"address"`
	Username      *string `yaml:"username"`
	Password      *string `yaml:"password"`
	PasswordFile  string  `yaml:"password_file"`
	SendCPassword *bool   `yaml:"send_cpassword"`
}

// ResolvePassword returns the configured password, reading password_file
// when no password is set inline.
func (d *Device) ResolvePassword() (string, error) {
	if d.Password != nil {
		return *d.Password, nil
	}
	if d.PasswordFile != "" {
		password, _, err := readPasswordFile(d.PasswordFile)
		return password, err
	}
	return "", nil
}
