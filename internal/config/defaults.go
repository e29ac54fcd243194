package config

// DefaultPaymentAddress receives GPU rental checkout payments.
const DefaultPaymentAddress = "0x71C7656EC7ab88b098defB751B7401B5f6d8976F"

// DefaultPreferredChainID is Ethereum mainnet.
const DefaultPreferredChainID = "0x1"

// DefaultEventPollMS is the provider event poll cadence in milliseconds.
const DefaultEventPollMS = 500

// DefaultReceiptPollSeconds is the receipt poll cadence in seconds.
const DefaultReceiptPollSeconds = 1

// DefaultReceiptMaxAttempts bounds receipt polling before reporting timeout.
const DefaultReceiptMaxAttempts = 30

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.nebula",
		Provider: ProviderConfig{
			BridgeURL:     "http://127.0.0.1:8547",
			EventPollMS:   DefaultEventPollMS,
			RatePerSecond: 5,
			RateBurst:     10,
		},
		Network: NetworkConfig{
			PreferredChainID: DefaultPreferredChainID,
		},
		Checkout: CheckoutConfig{
			PaymentAddress:     DefaultPaymentAddress,
			ReceiptPollSeconds: DefaultReceiptPollSeconds,
			ReceiptMaxAttempts: DefaultReceiptMaxAttempts,
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  "~/.nebula/nebula.log",
		},
	}
}
