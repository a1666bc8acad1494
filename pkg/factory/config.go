/*
 * IKESA Configuration Factory
 */

package factory

import (
	"fmt"

	"github.com/asaskevich/govalidator"

	"github.com/ikeforge/ikesa/pkg/message"
)

const IkesaExpectedConfigVersion = "1.0.0"

type Config struct {
	Info          *Info          `yaml:"info" valid:"required"`
	Configuration *Configuration `yaml:"configuration" valid:"required"`
}

func (c *Config) Validate() (bool, error) {
	if info := c.Info; info != nil {
		if result, err := info.validate(); err != nil {
			return result, err
		}
	}

	if configuration := c.Configuration; configuration != nil {
		if result, err := configuration.validate(); err != nil {
			return result, err
		}
	}

	result, err := govalidator.ValidateStruct(c)
	return result, appendInvalid(err)
}

type Info struct {
	Version     string `yaml:"version,omitempty" valid:"type(string),required"`
	Description string `yaml:"description,omitempty" valid:"type(string),optional"`
}

func (i *Info) validate() (bool, error) {
	result, err := govalidator.ValidateStruct(i)
	return result, appendInvalid(err)
}

type Configuration struct {
	Proposals []ProposalConfig `yaml:"proposals" valid:"required"`
}

// ProposalConfig names the algorithms of one IKE proposal. Names
// follow the IANA registry spelling, e.g. ENCR_AES_CBC.
type ProposalConfig struct {
	EncryptionAlgorithm  string `yaml:"encryptionAlgorithm" valid:"type(string),required"`
	EncryptionKeyLength  uint16 `yaml:"encryptionKeyLength,omitempty" valid:"optional"`
	PseudorandomFunction string `yaml:"pseudorandomFunction" valid:"type(string),required"`
	IntegrityAlgorithm   string `yaml:"integrityAlgorithm" valid:"type(string),required"`
	DiffieHellmanGroup   string `yaml:"diffieHellmanGroup" valid:"type(string),required"`
}

func (c *Configuration) validate() (bool, error) {
	if len(c.Proposals) == 0 {
		return false, fmt.Errorf("Invalid configuration: no proposals")
	}

	result, err := govalidator.ValidateStruct(c)
	return result, appendInvalid(err)
}

// IKEProposals maps the configured proposal set onto negotiation
// records.
func (c *Configuration) IKEProposals() ([]message.IKEProposal, error) {
	proposals := make([]message.IKEProposal, 0, len(c.Proposals))

	for i, proposalConfig := range c.Proposals {
		var record message.IKEProposal
		var ok bool

		if record.EncryptionAlgorithm, ok = message.EncryptionAlgorithmID(proposalConfig.EncryptionAlgorithm); !ok {
			return nil, fmt.Errorf("proposal %d: unknown encryption algorithm %q", i+1, proposalConfig.EncryptionAlgorithm)
		}
		record.EncryptionKeyLength = proposalConfig.EncryptionKeyLength

		if record.PseudorandomFunction, ok = message.PseudorandomFunctionID(proposalConfig.PseudorandomFunction); !ok {
			return nil, fmt.Errorf("proposal %d: unknown pseudorandom function %q", i+1, proposalConfig.PseudorandomFunction)
		}

		if record.IntegrityAlgorithm, ok = message.IntegrityAlgorithmID(proposalConfig.IntegrityAlgorithm); !ok {
			return nil, fmt.Errorf("proposal %d: unknown integrity algorithm %q", i+1, proposalConfig.IntegrityAlgorithm)
		}

		if record.DiffieHellmanGroup, ok = message.DiffieHellmanGroupID(proposalConfig.DiffieHellmanGroup); !ok {
			return nil, fmt.Errorf("proposal %d: unknown Diffie-Hellman group %q", i+1, proposalConfig.DiffieHellmanGroup)
		}

		proposals = append(proposals, record)
	}

	return proposals, nil
}

func appendInvalid(err error) error {
	var errs govalidator.Errors

	if err == nil {
		return nil
	}

	es := err.(govalidator.Errors).Errors()
	for _, e := range es {
		errs = append(errs, fmt.Errorf("Invalid %w", e))
	}

	return error(errs)
}

func (c *Config) GetVersion() string {
	if c.Info != nil && c.Info.Version != "" {
		return c.Info.Version
	}
	return ""
}
