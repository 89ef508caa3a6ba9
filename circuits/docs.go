package circuits

// The circuits package contains the zkSNARK circuit used by the anonymous
// credential system. Its goal is to let a registered voter prove membership
// in the published census and derive a one time nullifier, without
// disclosing who the voter is or where their leaf sits in the tree.
// The flow works like this:
//   1. The census authority builds a merkle tree over the shuffled voter
//      key hashes and publishes the root.
//   2. The voter fetches their authentication path and proves inside the
//      Credential circuit that the path leads from Poseidon(voterKey) to
//      the public root, revealing only the nullifier, the voter key hash
//      and the binding commitment.
//   3. The registrar verifies the proof against the fixed verification key
//      and claims the nullifier, so the same identity material can never
//      register twice.
//
// The circuit is native on BN254 and exists in two interchangeable forms:
// the gnark constraint system compiled from this package, and the circom
// build whose snarkjs proofs are converted and verified through the
// circom2gnark parser. Both share the Poseidon permutation, so a census
// built off-circuit matches either prover.
