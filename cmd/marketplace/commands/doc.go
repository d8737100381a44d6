// Package commands defines the marketplace CLI and wires dependencies for subcommands.
//
// Commands
//
//   - listings   List every active listing, optionally exporting CSV/JSON
//   - show       Resolve one listing into its product view
//   - price      Convert a base-unit price into settlement tokens
//   - tokens     Print the settlement token table
//   - buy        Purchase a listed NFT with the configured keypair
//   - withdraw   Close your own listing and take the NFT back
//   - history    Show journaled buy and withdraw attempts (needs journal_dsn)
//
// # Implementation
//
// The root command loads configuration, builds the logger, metrics collector
// and RPC client once, and hands subcommands an App holding the directory,
// resolver, converter and transaction builder. Every on-chain call receives
// the connection and wallet explicitly.
package commands
