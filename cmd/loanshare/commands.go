package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/SMartorana/hackatonIOTA-MC-sub000/account"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/coin"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/engine"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/id"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/registry"
)

func parseAmount(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}

// documentHash reads --hash, or hashes the file named by --doc.
func documentHash(hashHex, docPath string) (registry.DocumentHash, error) {
	if hashHex != "" {
		return registry.ParseDocumentHash(hashHex)
	}
	if docPath == "" {
		return registry.DocumentHash{}, fmt.Errorf("%w: --hash or --doc is required", registry.ErrInvalidHash)
	}
	data, err := os.ReadFile(docPath)
	if err != nil {
		return registry.DocumentHash{}, fmt.Errorf("read document: %w", err)
	}
	return registry.HashDocument(data), nil
}

func keygenCommand(a *app) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:         "keygen",
		Short:       "Generate a key pair and print its address",
		Annotations: map[string]string{"offline": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kp, err := account.NewKeyPair()
			if err != nil {
				return err
			}
			encoded, err := kp.Address.Encode(true)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "address:     %s\n", kp.Address.Hex())
			fmt.Fprintf(out, "base58:      %s\n", encoded)
			if outPath == "" {
				fmt.Fprintf(out, "private key: %s\n", hex.EncodeToString(kp.PrivateKey.Serialize()))
				return nil
			}
			password, err := a.keyPassword()
			if err != nil {
				return err
			}
			sealed, err := account.SealKey(kp, password)
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, sealed, 0600); err != nil {
				return fmt.Errorf("write key file: %w", err)
			}
			fmt.Fprintf(out, "key file:    %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "", "write the private key to this file, encrypted with --password or $LOANSHARE_PASSWORD")
	return cmd
}

func initCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the registry administered by --as",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			admin, err := a.callerAddress()
			if err != nil {
				return err
			}
			if err := a.eng.Init(cmd.Context(), admin); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registry initialized, admin %s\n", admin)
			return nil
		},
	}
}

func registerCommand(a *app) *cobra.Command {
	var creator, hashHex, docPath string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Notarize a document and name who may create its package",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			caller, err := a.callerAddress()
			if err != nil {
				return err
			}
			creatorAddr, err := account.Parse(creator)
			if err != nil {
				return err
			}
			hash, err := documentHash(hashHex, docPath)
			if err != nil {
				return err
			}
			rec, err := a.eng.Register(cmd.Context(), caller, id.Nil, hash, creatorAddr)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rec.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&creator, "creator", "", "authorized creator address")
	cmd.Flags().StringVar(&hashHex, "hash", "", "document SHA-256 in hex")
	cmd.Flags().StringVar(&docPath, "doc", "", "document file to hash")
	_ = cmd.MarkFlagRequired("creator")
	return cmd
}

func revokeCommand(a *app, revoke bool) *cobra.Command {
	use, short := "revoke <notarization>", "Revoke a notarization"
	if !revoke {
		use, short = "unrevoke <notarization>", "Clear a revocation"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.callerAddress()
			if err != nil {
				return err
			}
			nid, err := id.ParseWithPrefix(args[0], id.PrefixNotarization)
			if err != nil {
				return err
			}
			if revoke {
				return a.eng.Revoke(cmd.Context(), caller, nid)
			}
			return a.eng.Unrevoke(cmd.Context(), caller, nid)
		},
	}
}

func creatorCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-creator <notarization> <address>",
		Short: "Change who may create the package of an unbound notarization",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.callerAddress()
			if err != nil {
				return err
			}
			nid, err := id.ParseWithPrefix(args[0], id.PrefixNotarization)
			if err != nil {
				return err
			}
			creator, err := account.Parse(args[1])
			if err != nil {
				return err
			}
			return a.eng.UpdateAuthorizedCreator(cmd.Context(), caller, nid, creator)
		},
	}
}

func executorCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "executor",
		Short: "Manage the executor allow-list",
	}
	run := func(add bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			caller, err := a.callerAddress()
			if err != nil {
				return err
			}
			kind, err := registry.ParseExecutorKind(args[0])
			if err != nil {
				return err
			}
			var changed bool
			if add {
				changed, err = a.eng.AddExecutor(cmd.Context(), caller, kind)
			} else {
				changed, err = a.eng.RemoveExecutor(cmd.Context(), caller, kind)
			}
			if err != nil {
				return err
			}
			if !changed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s unchanged\n", kind)
			}
			return nil
		}
	}
	cmd.AddCommand(
		&cobra.Command{Use: "add <kind>", Short: "Allow-list an executor kind", Args: cobra.ExactArgs(1), RunE: run(true)},
		&cobra.Command{Use: "remove <kind>", Short: "Drop an executor kind", Args: cobra.ExactArgs(1), RunE: run(false)},
	)
	return cmd
}

func authorizeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authorize",
		Short: "Issue or cancel admin tickets",
	}

	transfer := &cobra.Command{
		Use:   "transfer <package> <notarization> <new-owner>",
		Short: "Allow the package bond to move to new-owner",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.callerAddress()
			if err != nil {
				return err
			}
			pkgID, err := id.ParseWithPrefix(args[0], id.PrefixPackage)
			if err != nil {
				return err
			}
			nid, err := id.ParseWithPrefix(args[1], id.PrefixNotarization)
			if err != nil {
				return err
			}
			newOwner, err := account.Parse(args[2])
			if err != nil {
				return err
			}
			return a.eng.AuthorizeTransfer(cmd.Context(), caller, pkgID, newOwner, nid)
		},
	}

	sales := &cobra.Command{
		Use:   "sales <package> <notarization> <open|closed>",
		Short: "Allow the package sales flag to be set",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.callerAddress()
			if err != nil {
				return err
			}
			pkgID, err := id.ParseWithPrefix(args[0], id.PrefixPackage)
			if err != nil {
				return err
			}
			nid, err := id.ParseWithPrefix(args[1], id.PrefixNotarization)
			if err != nil {
				return err
			}
			var open bool
			switch args[2] {
			case "open":
				open = true
			case "closed":
			default:
				return fmt.Errorf("sales state must be open or closed, got %q", args[2])
			}
			return a.eng.AuthorizeSalesToggle(cmd.Context(), caller, pkgID, open, nid)
		},
	}

	cancel := &cobra.Command{
		Use:   "cancel <transfer|sales> <package>",
		Short: "Withdraw a pending ticket",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.callerAddress()
			if err != nil {
				return err
			}
			pkgID, err := id.ParseWithPrefix(args[1], id.PrefixPackage)
			if err != nil {
				return err
			}
			switch args[0] {
			case "transfer":
				return a.eng.CancelTransfer(cmd.Context(), caller, pkgID)
			case "sales":
				return a.eng.CancelSalesToggle(cmd.Context(), caller, pkgID)
			}
			return fmt.Errorf("ticket kind must be transfer or sales, got %q", args[0])
		},
	}

	cmd.AddCommand(transfer, sales, cancel)
	return cmd
}

func createCommand(a *app) *cobra.Command {
	var p engine.PackageParams
	cmd := &cobra.Command{
		Use:   "create <notarization>",
		Short: "Create a package backed by a notarization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.callerAddress()
			if err != nil {
				return err
			}
			nid, err := id.ParseWithPrefix(args[0], id.PrefixNotarization)
			if err != nil {
				return err
			}
			pkg, bond, err := a.eng.CreatePackage(cmd.Context(), caller, nid, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "package %s\nbond    %s\n", pkg.ID, bond.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&p.Name, "name", "", "package name")
	cmd.Flags().Uint64Var(&p.TotalShares, "shares", 0, "total share supply")
	cmd.Flags().Uint64Var(&p.UnitPrice, "price", 0, "price per share")
	cmd.Flags().Uint64Var(&p.NominalValue, "nominal", 0, "nominal value of the loan book")
	cmd.Flags().Uint64Var(&p.InvestorSplit, "split", 0, "investor split out of 1000000")
	cmd.Flags().StringVar(&p.MetadataURI, "uri", "", "metadata URI")
	_ = cmd.MarkFlagRequired("shares")
	_ = cmd.MarkFlagRequired("split")
	return cmd
}

func buyCommand(a *app) *cobra.Command {
	var pay uint64
	cmd := &cobra.Command{
		Use:   "buy <package> <amount>",
		Short: "Buy shares of a package",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.callerAddress()
			if err != nil {
				return err
			}
			pkgID, err := id.ParseWithPrefix(args[0], id.PrefixPackage)
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			if pay == 0 {
				pkg, err := a.eng.Package(cmd.Context(), pkgID)
				if err != nil {
					return err
				}
				if pay, err = coin.Mul(amount, pkg.UnitPrice); err != nil {
					return err
				}
			}
			share, change, err := a.eng.Buy(cmd.Context(), caller, pkgID, amount, coin.New(pay))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "share %s\nchange %d\n", share.ID, change.Value)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&pay, "pay", 0, "payment offered (defaults to the exact cost)")
	return cmd
}

// packageAmountCommand builds commands of the form "<verb> <package> <amount>".
func packageAmountCommand(a *app, use, short string, run func(cmd *cobra.Command, caller account.Address, pkgID id.ID, amount uint64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.callerAddress()
			if err != nil {
				return err
			}
			pkgID, err := id.ParseWithPrefix(args[0], id.PrefixPackage)
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			return run(cmd, caller, pkgID, amount)
		},
	}
}

func depositCommand(a *app) *cobra.Command {
	return packageAmountCommand(a, "deposit <package> <amount>", "Deposit recovered revenue",
		func(cmd *cobra.Command, caller account.Address, pkgID id.ID, amount uint64) error {
			return a.eng.DepositRevenue(cmd.Context(), caller, pkgID, coin.New(amount))
		})
}

func withdrawCommand(a *app) *cobra.Command {
	return packageAmountCommand(a, "withdraw <package> <amount>", "Withdraw sale proceeds from the funding pool",
		func(cmd *cobra.Command, caller account.Address, pkgID id.ID, amount uint64) error {
			out, err := a.eng.WithdrawFunding(cmd.Context(), caller, pkgID, amount)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "withdrew %d\n", out.Value)
			return nil
		})
}

func claimCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "claim <share>",
		Short: "Claim the revenue accrued on a share",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.callerAddress()
			if err != nil {
				return err
			}
			shareID, err := id.ParseWithPrefix(args[0], id.PrefixShare)
			if err != nil {
				return err
			}
			out, err := a.eng.ClaimRevenue(cmd.Context(), caller, shareID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "claimed %d\n", out.Value)
			return nil
		},
	}
}

func claimOwnerCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "claim-owner <package>",
		Short: "Claim the owner's revenue of a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.callerAddress()
			if err != nil {
				return err
			}
			pkgID, err := id.ParseWithPrefix(args[0], id.PrefixPackage)
			if err != nil {
				return err
			}
			out, err := a.eng.ClaimOwnerRevenue(cmd.Context(), caller, pkgID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "claimed %d\n", out.Value)
			return nil
		},
	}
}

func transferBondCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer-bond <package> <new-owner>",
		Short: "Hand the package bond over using a transfer ticket",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.callerAddress()
			if err != nil {
				return err
			}
			pkgID, err := id.ParseWithPrefix(args[0], id.PrefixPackage)
			if err != nil {
				return err
			}
			newOwner, err := account.Parse(args[1])
			if err != nil {
				return err
			}
			return a.eng.TransferBond(cmd.Context(), caller, pkgID, newOwner)
		},
	}
}

func toggleSalesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-sales <package>",
		Short: "Apply the pending sales ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkgID, err := id.ParseWithPrefix(args[0], id.PrefixPackage)
			if err != nil {
				return err
			}
			open, err := a.eng.ToggleSales(cmd.Context(), pkgID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sales open: %t\n", open)
			return nil
		},
	}
}

func transferShareCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "transfer-share <share> <to>",
		Short: "Give a share to another account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.callerAddress()
			if err != nil {
				return err
			}
			shareID, err := id.ParseWithPrefix(args[0], id.PrefixShare)
			if err != nil {
				return err
			}
			to, err := account.Parse(args[1])
			if err != nil {
				return err
			}
			return a.eng.TransferShare(cmd.Context(), caller, shareID, to)
		},
	}
}

func verifyCommand(a *app) *cobra.Command {
	var hashHex, docPath string
	cmd := &cobra.Command{
		Use:   "verify <package>",
		Short: "Check a document against the package's notarized hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkgID, err := id.ParseWithPrefix(args[0], id.PrefixPackage)
			if err != nil {
				return err
			}
			hash, err := documentHash(hashHex, docPath)
			if err != nil {
				return err
			}
			ok, err := a.eng.VerifyDocument(cmd.Context(), pkgID, hash)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: document does not match %s", registry.ErrMismatch, pkgID)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "document matches")
			return nil
		},
	}
	cmd.Flags().StringVar(&hashHex, "hash", "", "document SHA-256 in hex")
	cmd.Flags().StringVar(&docPath, "doc", "", "document file to hash")
	return cmd
}

func checkCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <package>",
		Short: "Recompute the accounting invariants of a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pkgID, err := id.ParseWithPrefix(args[0], id.PrefixPackage)
			if err != nil {
				return err
			}
			if err := a.eng.CheckInvariants(cmd.Context(), pkgID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}
