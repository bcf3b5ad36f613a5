// Package store persists registry, ledger and fractional records.
//
// All access goes through Update and View transactions. Update runs its
// callback with exclusive write access and commits only if the callback
// returns nil; any error discards every write made inside it. Records are
// JSON encoded, one bucket per record kind.
package store

import (
	"encoding/json"
	"fmt"

	"github.com/SMartorana/hackatonIOTA-MC-sub000/account"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/fractional"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/id"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/ledger"
	"github.com/SMartorana/hackatonIOTA-MC-sub000/registry"
)

var (
	bucketMeta        = []byte("meta")
	bucketPackages    = []byte("packages")
	bucketBonds       = []byte("bonds")
	bucketShares      = []byte("shares")
	bucketVaults      = []byte("vaults")
	bucketControllers = []byte("controllers")
	bucketUnits       = []byte("units")

	allBuckets = [][]byte{
		bucketMeta, bucketPackages, bucketBonds, bucketShares,
		bucketVaults, bucketControllers, bucketUnits,
	}

	keyRegistry = []byte("registry")
)

// Store opens transactions over persisted state.
type Store interface {
	// Update runs fn in a read-write transaction.
	Update(fn func(*Txn) error) error

	// View runs fn in a read-only transaction.
	View(fn func(*Txn) error) error

	// Close releases the store.
	Close() error
}

// kv is the bucketed key/value surface a backend exposes to a transaction.
type kv interface {
	get(bucket, key []byte) []byte
	put(bucket, key, value []byte) error
	delete(bucket, key []byte) error
	forEach(bucket []byte, fn func(key, value []byte) error) error
}

// Txn gives typed access to records inside one transaction.
type Txn struct {
	kv kv
}

func (t *Txn) load(bucket, key []byte, v any) error {
	data := t.kv.get(bucket, key)
	if data == nil {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, bucket, key)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("store: decode %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (t *Txn) save(bucket, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s/%s: %w", bucket, key, err)
	}
	return t.kv.put(bucket, key, data)
}

func requireID(i id.ID, what string) error {
	if i.IsNil() {
		return fmt.Errorf("%w: %s id", ErrNilParam, what)
	}
	return nil
}

// Registry loads the registry singleton.
func (t *Txn) Registry() (*registry.Registry, error) {
	var r registry.Registry
	if err := t.load(bucketMeta, keyRegistry, &r); err != nil {
		return nil, err
	}
	r.Normalize()
	return &r, nil
}

// PutRegistry saves the registry singleton.
func (t *Txn) PutRegistry(r *registry.Registry) error {
	if r == nil {
		return fmt.Errorf("%w: registry", ErrNilParam)
	}
	return t.save(bucketMeta, keyRegistry, r)
}

// Package loads a package ledger.
func (t *Txn) Package(pkgID id.ID) (*ledger.Package, error) {
	var p ledger.Package
	if err := t.load(bucketPackages, pkgID.Key(), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// PutPackage saves a package ledger.
func (t *Txn) PutPackage(p *ledger.Package) error {
	if p == nil {
		return fmt.Errorf("%w: package", ErrNilParam)
	}
	if err := requireID(p.ID, "package"); err != nil {
		return err
	}
	return t.save(bucketPackages, p.ID.Key(), p)
}

// Packages lists every package.
func (t *Txn) Packages() ([]*ledger.Package, error) {
	var out []*ledger.Package
	err := t.kv.forEach(bucketPackages, func(_, value []byte) error {
		var p ledger.Package
		if err := json.Unmarshal(value, &p); err != nil {
			return fmt.Errorf("store: decode package: %w", err)
		}
		out = append(out, &p)
		return nil
	})
	return out, err
}

// Bond loads an ownership bond.
func (t *Txn) Bond(bondID id.ID) (*ledger.OwnershipBond, error) {
	var b ledger.OwnershipBond
	if err := t.load(bucketBonds, bondID.Key(), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// PutBond saves an ownership bond.
func (t *Txn) PutBond(b *ledger.OwnershipBond) error {
	if b == nil {
		return fmt.Errorf("%w: bond", ErrNilParam)
	}
	if err := requireID(b.ID, "bond"); err != nil {
		return err
	}
	return t.save(bucketBonds, b.ID.Key(), b)
}

// Share loads an investor share.
func (t *Txn) Share(shareID id.ID) (*ledger.Share, error) {
	var s ledger.Share
	if err := t.load(bucketShares, shareID.Key(), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// PutShare saves an investor share.
func (t *Txn) PutShare(s *ledger.Share) error {
	if s == nil {
		return fmt.Errorf("%w: share", ErrNilParam)
	}
	if err := requireID(s.ID, "share"); err != nil {
		return err
	}
	return t.save(bucketShares, s.ID.Key(), s)
}

func (t *Txn) shares(match func(*ledger.Share) bool) ([]*ledger.Share, error) {
	var out []*ledger.Share
	err := t.kv.forEach(bucketShares, func(_, value []byte) error {
		var s ledger.Share
		if err := json.Unmarshal(value, &s); err != nil {
			return fmt.Errorf("store: decode share: %w", err)
		}
		if match(&s) {
			out = append(out, &s)
		}
		return nil
	})
	return out, err
}

// SharesByPackage lists the live shares of a package.
func (t *Txn) SharesByPackage(pkgID id.ID) ([]*ledger.Share, error) {
	return t.shares(func(s *ledger.Share) bool { return s.PackageID.Equal(pkgID) })
}

// SharesByOwner lists the shares held by owner across packages.
func (t *Txn) SharesByOwner(owner account.Address) ([]*ledger.Share, error) {
	return t.shares(func(s *ledger.Share) bool { return s.Owner == owner })
}

// Vault loads a fractional vault.
func (t *Txn) Vault(vaultID id.ID) (*fractional.Vault, error) {
	var v fractional.Vault
	if err := t.load(bucketVaults, vaultID.Key(), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// PutVault saves a fractional vault.
func (t *Txn) PutVault(v *fractional.Vault) error {
	if v == nil {
		return fmt.Errorf("%w: vault", ErrNilParam)
	}
	if err := requireID(v.ID, "vault"); err != nil {
		return err
	}
	return t.save(bucketVaults, v.ID.Key(), v)
}

// DeleteVault removes a vault.
func (t *Txn) DeleteVault(vaultID id.ID) error {
	if t.kv.get(bucketVaults, vaultID.Key()) == nil {
		return fmt.Errorf("%w: vault %s", ErrNotFound, vaultID)
	}
	return t.kv.delete(bucketVaults, vaultID.Key())
}

// VaultsByPackage lists the live vaults of a package.
func (t *Txn) VaultsByPackage(pkgID id.ID) ([]*fractional.Vault, error) {
	var out []*fractional.Vault
	err := t.kv.forEach(bucketVaults, func(_, value []byte) error {
		var v fractional.Vault
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("store: decode vault: %w", err)
		}
		if v.PackageID.Equal(pkgID) {
			out = append(out, &v)
		}
		return nil
	})
	return out, err
}

// Controller loads a supply controller that is not locked in a vault.
func (t *Txn) Controller(ctrlID id.ID) (*fractional.SupplyController, error) {
	var c fractional.SupplyController
	if err := t.load(bucketControllers, ctrlID.Key(), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// PutController saves a supply controller.
func (t *Txn) PutController(c *fractional.SupplyController) error {
	if c == nil {
		return fmt.Errorf("%w: controller", ErrNilParam)
	}
	if err := requireID(c.ID, "controller"); err != nil {
		return err
	}
	return t.save(bucketControllers, c.ID.Key(), c)
}

// DeleteController removes a supply controller.
func (t *Txn) DeleteController(ctrlID id.ID) error {
	if t.kv.get(bucketControllers, ctrlID.Key()) == nil {
		return fmt.Errorf("%w: controller %s", ErrNotFound, ctrlID)
	}
	return t.kv.delete(bucketControllers, ctrlID.Key())
}

// unitKey is kind + "/" + owner hex, so one kind's holders sort together.
func unitKey(kind id.ID, owner account.Address) []byte {
	return []byte(kind.String() + "/" + owner.Hex())
}

// Units returns owner's balance of a unit kind. Missing balances are zero.
func (t *Txn) Units(kind id.ID, owner account.Address) (fractional.Units, error) {
	u := fractional.Units{Kind: kind}
	data := t.kv.get(bucketUnits, unitKey(kind, owner))
	if data == nil {
		return u, nil
	}
	if err := json.Unmarshal(data, &u); err != nil {
		return u, fmt.Errorf("store: decode units: %w", err)
	}
	return u, nil
}

// PutUnits saves owner's balance. A zero balance deletes the entry.
func (t *Txn) PutUnits(owner account.Address, u fractional.Units) error {
	if err := requireID(u.Kind, "unit kind"); err != nil {
		return err
	}
	key := unitKey(u.Kind, owner)
	if u.Value == 0 {
		if t.kv.get(bucketUnits, key) == nil {
			return nil
		}
		return t.kv.delete(bucketUnits, key)
	}
	return t.save(bucketUnits, key, u)
}
