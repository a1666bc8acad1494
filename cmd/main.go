package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/ikeforge/ikesa/internal/logger"
	"github.com/ikeforge/ikesa/pkg/factory"
	"github.com/ikeforge/ikesa/pkg/message"
)

func main() {
	defer func() {
		if p := recover(); p != nil {
			// Print stack for panic to log. Fatalf() will let program exit.
			logger.AppLog.Fatalf("panic: %v\n%s", p, string(debug.Stack()))
		}
	}()

	app := cli.NewApp()
	app.Name = "ikesa"
	app.Usage = "IKEv2 Security Association payload tool"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "debug, d",
			Usage: "Enable debug logging",
		},
	}
	app.Before = func(c *cli.Context) error {
		if c.GlobalBool("debug") {
			logger.SetLogLevel(logrus.DebugLevel)
		}
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:      "decode",
			Usage:     "Decode a hex-encoded SA payload and list its proposals",
			ArgsUsage: "<hex>",
			Action:    decodeAction,
		},
		{
			Name:  "build",
			Usage: "Build an SA payload from a YAML proposal configuration",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "config, c",
					Usage: "Load proposal configuration from `FILE`",
					Value: "ikesa.yaml",
				},
			},
			Action: buildAction,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.AppLog.Errorf("ikesa run error: %v", err)
		os.Exit(1)
	}
}

func decodeAction(c *cli.Context) error {
	arg := strings.TrimSpace(c.Args().First())
	if arg == "" {
		return fmt.Errorf("missing hex payload argument")
	}

	raw, err := hex.DecodeString(arg)
	if err != nil {
		return errors.Wrap(err, "hex decode")
	}

	sa := new(message.SecurityAssociation)
	consumed, err := message.Decode(sa, raw)
	if err != nil {
		return errors.Wrap(err, "decode SA payload")
	}
	if consumed < len(raw) {
		logger.AppLog.Warnf("%d trailing bytes after the SA payload", len(raw)-consumed)
	}

	if err := sa.Verify(); err != nil {
		return errors.Wrap(err, "verify SA payload")
	}

	fmt.Printf("SA payload: %d bytes, %d proposals\n", sa.Length(), len(sa.Proposals))
	for _, proposal := range sa.Proposals {
		fmt.Printf("  proposal %d: protocol %s, SPI %s\n",
			proposal.ProposalNumber, message.ProtocolName(proposal.ProtocolID), hex.EncodeToString(proposal.SPI))
		for _, transform := range proposal.Transforms {
			line := fmt.Sprintf("    %s %s",
				message.TransformTypeName(transform.TransformType),
				message.TransformIDName(transform.TransformType, transform.TransformID))
			if keyLength, ok := transform.KeyLength(); ok {
				line += fmt.Sprintf(" (key length %d)", keyLength)
			}
			fmt.Println(line)
		}
	}

	records, err := sa.IKEProposals()
	if err != nil {
		if errors.Cause(err) == message.ErrProposalNotFound {
			logger.AppLog.Infoln("no IKE proposals in this payload")
			return nil
		}
		return errors.Wrap(err, "extract IKE proposals")
	}

	fmt.Printf("IKE proposals: %d\n", len(records))
	for i, record := range records {
		fmt.Printf("  %d: %s/%d %s %s %s\n", i+1,
			message.EncryptionAlgorithmName(record.EncryptionAlgorithm), record.EncryptionKeyLength,
			message.IntegrityAlgorithmName(record.IntegrityAlgorithm),
			message.PseudorandomFunctionName(record.PseudorandomFunction),
			message.DiffieHellmanGroupName(record.DiffieHellmanGroup))
	}

	return nil
}

func buildAction(c *cli.Context) error {
	if err := factory.InitConfigFactory(c.String("config")); err != nil {
		logger.CfgLog.Errorf("%+v", err)
		return err
	}

	if err := factory.CheckConfigVersion(); err != nil {
		return err
	}

	if _, err := factory.IkesaConfig.Validate(); err != nil {
		switch errType := err.(type) {
		case govalidator.Errors:
			validErrs := err.(govalidator.Errors).Errors()
			for _, validErr := range validErrs {
				logger.CfgLog.Errorf("%+v", validErr)
			}
		default:
			logger.CfgLog.Errorf("%+v", errType)
		}
		return fmt.Errorf("Failed to validate configuration !!")
	}

	records, err := factory.IkesaConfig.Configuration.IKEProposals()
	if err != nil {
		return err
	}

	sa := message.NewSecurityAssociationFromProposals(records)
	data, err := message.Encode(sa)
	if err != nil {
		return errors.Wrap(err, "encode SA payload")
	}

	fmt.Println(hex.EncodeToString(data))
	return nil
}
