// Package jamf implements category and policy operations on top of the
// tree-level API.
//
// Policies are fetched whole, edited through their normalized package
// collection and written back whole:
//
//	p, err := jamf.GetPolicy(ctx, client, jamf.ByName("Install Tools"))
//	if err != nil {
//	    return err
//	}
//	if _, err := p.AddPackage(ctx, "tools-1.2.pkg", ""); err != nil {
//	    return err
//	}
//
// Failures are reported as *DomainError wrapping one of the package's
// sentinel errors, an api error or a collection.ShapeError. If a write
// fails the local package list is restored.
package jamf
