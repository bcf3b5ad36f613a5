package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/SMartorana/hackatonIOTA-MC-sub000/id"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/ledger"
)

func showCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [package|share|notarization]",
		Short: "List packages, or show one record",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				return a.listPackages(cmd, out)
			}
			ref, err := id.Parse(args[0])
			if err != nil {
				return err
			}
			switch ref.Prefix() {
			case id.PrefixPackage:
				return a.showPackage(cmd, out, ref)
			case id.PrefixShare:
				return a.showShare(cmd, out, ref)
			case id.PrefixNotarization:
				return a.showNotarization(cmd, out, ref)
			}
			return fmt.Errorf("cannot show records of kind %q", ref.Prefix())
		},
	}
}

func (a *app) listPackages(cmd *cobra.Command, out io.Writer) error {
	pkgs, err := a.eng.Packages(cmd.Context())
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PACKAGE\tNAME\tSOLD\tSELLABLE\tDEPOSITED\tSALES")
	for _, p := range pkgs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%t\n",
			p.ID, p.Name, p.TokensSold, p.MaxSellableSupply, p.TotalRevenueDeposited, p.SalesOpen)
	}
	return tw.Flush()
}

func (a *app) showPackage(cmd *cobra.Command, out io.Writer, pkgID id.ID) error {
	ctx := cmd.Context()
	pkg, err := a.eng.Package(ctx, pkgID)
	if err != nil {
		return err
	}
	bond, err := a.eng.Bond(ctx, pkgID)
	if err != nil {
		return err
	}
	owner, err := a.eng.OwnerEntitlement(ctx, pkgID)
	if err != nil {
		return err
	}
	shares, err := a.eng.SharesByPackage(ctx, pkgID)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "package\t%s\n", pkg.ID)
	fmt.Fprintf(tw, "name\t%s\n", pkg.Name)
	fmt.Fprintf(tw, "notarization\t%s\n", pkg.NotarizationID)
	fmt.Fprintf(tw, "document\t%s\n", pkg.DocumentHash)
	fmt.Fprintf(tw, "shares\t%d total, %d sellable, %d sold\n", pkg.TotalShares, pkg.MaxSellableSupply, pkg.TokensSold)
	fmt.Fprintf(tw, "price\t%d\n", pkg.UnitPrice)
	fmt.Fprintf(tw, "funding pool\t%d\n", pkg.FundingPool.Value)
	fmt.Fprintf(tw, "revenue\t%d deposited, %d paid, %d pooled\n",
		pkg.TotalRevenueDeposited, pkg.RevenuePaidOut, pkg.RevenuePool.Value)
	fmt.Fprintf(tw, "sales open\t%t\n", pkg.SalesOpen)
	fmt.Fprintf(tw, "owner\t%s (bond %s, due %d)\n", bond.Owner, bond.ID, owner.Due)
	writeShares(tw, shares)
	return tw.Flush()
}

func writeShares(w io.Writer, shares []*ledger.Share) {
	for _, s := range shares {
		fmt.Fprintf(w, "share\t%s  %s  balance %d  claimed %d\n", s.ID, s.Owner, s.Balance, s.ClaimedRevenue)
	}
}

func (a *app) showShare(cmd *cobra.Command, out io.Writer, shareID id.ID) error {
	share, err := a.eng.Share(cmd.Context(), shareID)
	if err != nil {
		return err
	}
	ent, err := a.eng.Entitlement(cmd.Context(), shareID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "share %s of %s\nowner %s\nbalance %d\nentitled %d\nclaimed %d\ndue %d\n",
		share.ID, share.PackageID, share.Owner, share.Balance, ent.Entitled, ent.Claimed, ent.Due)
	return nil
}

func (a *app) showNotarization(cmd *cobra.Command, out io.Writer, nid id.ID) error {
	rec, err := a.eng.Notarization(cmd.Context(), nid)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "notarization %s\ndocument %s\nauditor %s\ncreator %s\nrevoked %t\nbound %s\n",
		rec.ID, rec.DocumentHash, rec.Auditor, rec.AuthorizedCreator, rec.Revoked, rec.BoundContract)
	return nil
}
