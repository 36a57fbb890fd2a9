package config

const VERSION = "0.1.0"
