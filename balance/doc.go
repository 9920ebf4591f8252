/*
Package balance implements the native value ledger of the custody core.

Balance ledger stores native balances of all identities, including derived
addresses of company vaults and bounty escrows, which hold custodied funds.
It is the value-transfer collaborator of the vault and escrow state machines:
they move funds only through Native().TransferNative and never touch wallet
records themselves.

Value enters the ledger with Mint and leaves it with Burn. Both change the
total supply, transfers never do.

# Notifications

Transfer notification. This is a NEP-17 styled notification, null from/to
stands for mint/burn.

	Transfer:
	  - name: from
	    type: Hash160
	  - name: to
	    type: Hash160
	  - name: amount
	    type: Integer

TransferX notification. This is an enhanced transfer notification with details.
The first byte of details tells the kind of movement (mint, burn, vault,
escrow, platform fee).

	TransferX:
	  - name: from
	    type: Hash160
	  - name: to
	    type: Hash160
	  - name: amount
	    type: Integer
	  - name: details
	    type: ByteArray
*/
package balance

/*
Storage model.

# Summary
Key-value storage format:
 - 's' -> Account
   total amount of native value in the ledger
 - a<util.Uint160> -> Account
   balance sheet of all identities (here Account is a structure defined in current package)

Accounts with zero balance are removed.
*/
