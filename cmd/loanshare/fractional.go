package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SMartorana/hackatonIOTA-MC-sub000/account"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/id"
)

func controllerCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "new-controller",
		Short: "Create a fresh supply controller owned by --as",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			caller, err := a.callerAddress()
			if err != nil {
				return err
			}
			ctrl, err := a.eng.NewSupplyController(cmd.Context(), caller)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ctrl.ID)
			return nil
		},
	}
}

func fractionalizeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fractionalize <share> <controller> <amount>",
		Short: "Split part of a share into fungible units",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.callerAddress()
			if err != nil {
				return err
			}
			shareID, err := id.ParseWithPrefix(args[0], id.PrefixShare)
			if err != nil {
				return err
			}
			ctrlID, err := id.ParseWithPrefix(args[1], id.PrefixController)
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			vault, err := a.eng.Fractionalize(cmd.Context(), caller, shareID, ctrlID, amount)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "vault %s\nunits %s\n", vault.ID, vault.Kind())
			return nil
		},
	}
}

func redeemCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "redeem <vault> <amount>",
		Short: "Burn units for a new share",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.callerAddress()
			if err != nil {
				return err
			}
			vaultID, err := id.ParseWithPrefix(args[0], id.PrefixVault)
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			vault, err := a.eng.Vault(cmd.Context(), vaultID)
			if err != nil {
				return err
			}
			share, err := a.eng.Redeem(cmd.Context(), caller, vaultID, vault.PackageID, amount)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), share.ID)
			return nil
		},
	}
}

func mergeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <share> <vault> <amount>",
		Short: "Burn units back into an existing share",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.callerAddress()
			if err != nil {
				return err
			}
			shareID, err := id.ParseWithPrefix(args[0], id.PrefixShare)
			if err != nil {
				return err
			}
			vaultID, err := id.ParseWithPrefix(args[1], id.PrefixVault)
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			return a.eng.MergeBack(cmd.Context(), caller, shareID, vaultID, amount)
		},
	}
}

func sendUnitsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "send-units <kind> <to> <amount>",
		Short: "Transfer fungible units",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.callerAddress()
			if err != nil {
				return err
			}
			kind, err := id.ParseWithPrefix(args[0], id.PrefixController)
			if err != nil {
				return err
			}
			to, err := account.Parse(args[1])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			return a.eng.TransferUnits(cmd.Context(), caller, kind, to, amount)
		},
	}
}

func destroyVaultCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "destroy-vault <vault>",
		Short: "Remove a vault whose units are all burned",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vaultID, err := id.ParseWithPrefix(args[0], id.PrefixVault)
			if err != nil {
				return err
			}
			_, err = a.eng.DestroyEmptyVault(cmd.Context(), vaultID)
			return err
		},
	}
}
