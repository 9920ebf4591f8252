/*
Package vault implements company vault of the custody core.

Company vault is a single-owner time-locked account: the owner deposits native
value at any time and can withdraw it only after LockupDuration (15 days) has
passed since the latest deposit. Each owner has exactly one vault addressed by
Address(owner); the same address is the native wallet holding vault funds.

Every deposit resets the lock-up clock for the whole vault balance, not only
for the deposited increment.

Withdrawals may be sent to any identity the owner names, the recipient is not
checked.

# Notifications

Deposit notification. It is produced on each successful deposit.

	Deposit:
	  - name: depositor
	    type: Hash160
	  - name: amount
	    type: Integer
	  - name: timestamp
	    type: Integer

Withdraw notification. It is produced on each successful withdrawal.

	Withdraw:
	  - name: recipient
	    type: Hash160
	  - name: amount
	    type: Integer
	  - name: timestamp
	    type: Integer
*/
package vault

/*
Storage model.

# Summary
Key-value storage format:
 - v<util.Uint160> -> Vault
   vault record addressed by the derived vault address

Vault records are never removed.
*/
