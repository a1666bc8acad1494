/*
 * IKESA Configuration Factory
 */

package factory

import (
	"fmt"
	"io/ioutil"

	yaml "gopkg.in/yaml.v2"

	"github.com/ikeforge/ikesa/internal/logger"
)

var IkesaConfig Config

func InitConfigFactory(f string) error {
	if content, err := ioutil.ReadFile(f); err != nil {
		return err
	} else {
		IkesaConfig = Config{}

		if yamlErr := yaml.Unmarshal(content, &IkesaConfig); yamlErr != nil {
			return yamlErr
		}
	}

	return nil
}

func CheckConfigVersion() error {
	currentVersion := IkesaConfig.GetVersion()

	if currentVersion != IkesaExpectedConfigVersion {
		return fmt.Errorf("config version is [%s], but expected is [%s].",
			currentVersion, IkesaExpectedConfigVersion)
	}

	logger.CfgLog.Infof("config version [%s]", currentVersion)

	return nil
}
