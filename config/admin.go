package config

type AdminConfig struct {
	Listen string `yaml:"listen" json:"listen" env:"HOOKRELAY_ADMIN_LISTEN" default:"127.0.0.1:9601"`
}

func (cfg AdminConfig) Validate() error {
	return nil
}
